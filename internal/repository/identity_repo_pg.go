package repository

import (
	"context"

	"gorm.io/gorm"

	"roomies/invitehub/internal/model"
)

type pgIdentityRepository struct {
	db *gorm.DB
}

func NewPGIdentityRepository(db *gorm.DB) IdentityRepository {
	return &pgIdentityRepository{db: db}
}

func (r *pgIdentityRepository) Create(ctx context.Context, identity *model.UserIdentity) error {
	return translateGormError(r.db.WithContext(ctx).Create(identity).Error)
}

func (r *pgIdentityRepository) GetByTypeAndIdentifier(
	ctx context.Context, idType model.IdentityType, identifier string,
) (*model.UserIdentity, error) {
	var identity model.UserIdentity
	err := r.db.WithContext(ctx).
		Where("identity_type = ? AND identifier = ?", idType, identifier).
		First(&identity).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &identity, nil
}

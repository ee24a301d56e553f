package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"roomies/invitehub/internal/model"
)

// pgInviteStore delegates validation and consumption to the
// validate_invite_code and consume_invite functions installed by
// model.AutoMigrate, so each call is a single round trip.
type pgInviteStore struct {
	db *gorm.DB
}

func NewPGInviteStore(db *gorm.DB) InviteStore {
	return &pgInviteStore{db: db}
}

func (s *pgInviteStore) ValidateInviteCode(ctx context.Context, code string) (*model.InviteStatus, error) {
	var status model.InviteStatus
	res := s.db.WithContext(ctx).
		Raw("SELECT * FROM validate_invite_code(?::text)", code).
		Scan(&status)
	if res.Error != nil {
		return nil, fmt.Errorf("validate_invite_code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &status, nil
}

func (s *pgInviteStore) ConsumeInvite(ctx context.Context, code string, userID uuid.UUID) (model.ConsumeOutcome, error) {
	var raw string
	err := s.db.WithContext(ctx).
		Raw("SELECT consume_invite(?::text, ?::uuid)", code, userID.String()).
		Scan(&raw).Error
	if err != nil {
		return "", fmt.Errorf("consume_invite: %w", err)
	}
	return model.ParseConsumeOutcome(raw)
}

func (s *pgInviteStore) CreateInviteCode(ctx context.Context, invite *model.InviteCode) error {
	return translateGormError(s.db.WithContext(ctx).Create(invite).Error)
}

func (s *pgInviteStore) ListInviteCodes(ctx context.Context) ([]model.InviteCode, error) {
	var codes []model.InviteCode
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

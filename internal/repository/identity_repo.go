package repository

import (
	"context"

	"roomies/invitehub/internal/model"
)

type IdentityRepository interface {
	// Create returns ErrAlreadyExists when the (type, identifier) pair is taken.
	Create(ctx context.Context, identity *model.UserIdentity) error
	GetByTypeAndIdentifier(ctx context.Context, idType model.IdentityType, identifier string) (*model.UserIdentity, error)
}

package repository

import (
	"context"

	"github.com/google/uuid"

	"roomies/invitehub/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// GetByID returns ErrNotFound for unknown ids.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

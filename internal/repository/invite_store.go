package repository

import (
	"context"

	"github.com/google/uuid"

	"roomies/invitehub/internal/model"
)

// InviteStore holds invite codes and their usage log.
//
// ConsumeInvite is the only code path allowed to change an invite's use
// counter. It decides and writes in one atomic unit: the invite must exist,
// must not belong to the caller, must not be expired and must have a free
// slot at the moment of the write. A caller that already consumed the
// invite gets ConsumeOutcomeAlreadyConsumed and nothing is written.
type InviteStore interface {
	// ValidateInviteCode returns ErrNotFound for unknown codes.
	ValidateInviteCode(ctx context.Context, code string) (*model.InviteStatus, error)
	ConsumeInvite(ctx context.Context, code string, userID uuid.UUID) (model.ConsumeOutcome, error)

	CreateInviteCode(ctx context.Context, invite *model.InviteCode) error
	ListInviteCodes(ctx context.Context) ([]model.InviteCode, error)
}

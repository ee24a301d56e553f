package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"roomies/invitehub/internal/model"
	"roomies/invitehub/internal/repository"
	"roomies/invitehub/pkg/crypto"
)

var ErrInvalidMaxUses = errors.New("max_uses must be positive")

// InviteService is the admin-facing glue for issuing and listing codes.
type InviteService interface {
	CreateInviteCode(ctx context.Context, inviter uuid.UUID, maxUses *int, expiresAt *time.Time) (*model.InviteCode, error)
	ListInviteCodes(ctx context.Context) ([]model.InviteCode, error)
}

type inviteService struct {
	store repository.InviteStore
}

func NewInviteService(store repository.InviteStore) InviteService {
	return &inviteService{store: store}
}

// CreateInviteCode issues a code owned by inviter. A nil maxUses means
// unlimited; a nil expiresAt means the code never expires.
func (s *inviteService) CreateInviteCode(ctx context.Context, inviter uuid.UUID, maxUses *int, expiresAt *time.Time) (*model.InviteCode, error) {
	if maxUses != nil && *maxUses <= 0 {
		return nil, ErrInvalidMaxUses
	}

	code, err := crypto.GenerateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("generate invite code: %w", err)
	}

	invite := &model.InviteCode{
		ID:        uuid.New(),
		Code:      code,
		MaxUses:   maxUses,
		ExpiresAt: expiresAt,
	}
	if inviter != uuid.Nil {
		invite.InviterUserID = &inviter
	}
	if err := s.store.CreateInviteCode(ctx, invite); err != nil {
		return nil, fmt.Errorf("create invite code: %w", err)
	}
	return invite, nil
}

func (s *inviteService) ListInviteCodes(ctx context.Context) ([]model.InviteCode, error) {
	codes, err := s.store.ListInviteCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invite codes: %w", err)
	}
	if codes == nil {
		codes = []model.InviteCode{}
	}
	return codes, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roomies/invitehub/internal/repository"
	"roomies/invitehub/pkg/crypto"
)

const pendingInviteKeyPrefix = "invite:pending:"

// DefaultPendingInviteTTL is how long a clicked invite link is remembered.
const DefaultPendingInviteTTL = 7 * 24 * time.Hour

// PendingInviteCarrier remembers a validated code between the invite link
// click and the consume call after signup. The client holds an opaque
// handle; the code itself lives in the state store and vanishes after the
// TTL. Losing it only costs the user a second click on the link.
type PendingInviteCarrier interface {
	// Remember moves Absent -> Pending(code) and returns the handle.
	Remember(ctx context.Context, code string) (string, error)
	// Pending reports the code behind handle, or ok=false when Absent.
	Pending(ctx context.Context, handle string) (code string, ok bool, err error)
	// Clear moves Pending -> Cleared. Clearing an absent handle is a no-op.
	Clear(ctx context.Context, handle string) error
	TTL() time.Duration
}

type pendingInviteCarrier struct {
	state repository.StateStore
	ttl   time.Duration
}

func NewPendingInviteCarrier(state repository.StateStore, ttl time.Duration) PendingInviteCarrier {
	if ttl <= 0 {
		ttl = DefaultPendingInviteTTL
	}
	return &pendingInviteCarrier{state: state, ttl: ttl}
}

func (p *pendingInviteCarrier) TTL() time.Duration { return p.ttl }

func (p *pendingInviteCarrier) Remember(ctx context.Context, code string) (string, error) {
	code = normalizeCode(code)
	if code == "" {
		return "", errors.New("pending invite code is empty")
	}
	handle, err := crypto.GeneratePendingHandle()
	if err != nil {
		return "", fmt.Errorf("generate pending handle: %w", err)
	}
	if err := p.state.Set(ctx, pendingInviteKeyPrefix+handle, []byte(code), p.ttl); err != nil {
		return "", fmt.Errorf("store pending invite: %w", err)
	}
	return handle, nil
}

func (p *pendingInviteCarrier) Pending(ctx context.Context, handle string) (string, bool, error) {
	if handle == "" {
		return "", false, nil
	}
	val, err := p.state.Get(ctx, pendingInviteKeyPrefix+handle)
	if err != nil {
		return "", false, fmt.Errorf("load pending invite: %w", err)
	}
	if len(val) == 0 {
		return "", false, nil
	}
	return string(val), true, nil
}

func (p *pendingInviteCarrier) Clear(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	if err := p.state.Delete(ctx, pendingInviteKeyPrefix+handle); err != nil {
		return fmt.Errorf("clear pending invite: %w", err)
	}
	return nil
}

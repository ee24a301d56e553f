package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roomies/invitehub/internal/model"
	"roomies/invitehub/internal/repository"
)

// ValidationResult is the verdict for someone holding an invite code.
type ValidationResult struct {
	Valid  bool
	Reason model.InviteReason
	// InviterDisplayName is filled in on a best-effort basis for valid codes.
	InviterDisplayName string
}

type InviteValidator interface {
	// Validate never writes. Declines come back as a result with a Reason;
	// an error always wraps ErrInviteValidation.
	Validate(ctx context.Context, rawCode string) (ValidationResult, error)
}

type inviteValidator struct {
	store  repository.InviteStore
	users  repository.UserRepository
	logger *zap.Logger
	opts   inviteOptions
}

// NewInviteValidator builds a validator. users may be nil, in which case
// results carry no inviter display name.
func NewInviteValidator(
	store repository.InviteStore,
	users repository.UserRepository,
	logger *zap.Logger,
	opts ...InviteOption,
) InviteValidator {
	return &inviteValidator{
		store:  store,
		users:  users,
		logger: logger.Named("invite.validator"),
		opts:   buildInviteOptions(opts),
	}
}

func (v *inviteValidator) Validate(ctx context.Context, rawCode string) (ValidationResult, error) {
	code := normalizeCode(rawCode)
	if code == "" {
		return ValidationResult{Reason: model.InviteReasonNoCode}, nil
	}

	ctx, cancel := withStoreTimeout(ctx, v.opts.storeTimeout)
	defer cancel()

	status, err := v.store.ValidateInviteCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return ValidationResult{Reason: model.InviteReasonNotFound}, nil
	}
	if err != nil {
		v.logger.Error("invite lookup failed",
			zap.String("code_prefix", maskCode(code)),
			zap.Error(err),
		)
		return ValidationResult{}, fmt.Errorf("%w: %w", ErrInviteValidation, err)
	}

	now := v.opts.now()
	if !status.IsValid || status.Expired(now) || status.Exhausted() {
		return ValidationResult{Reason: DeriveReason(status, now)}, nil
	}

	result := ValidationResult{Valid: true}
	if status.InviterUserID != nil {
		result.InviterDisplayName = v.inviterDisplayName(ctx, *status.InviterUserID)
	}
	return result, nil
}

func (v *inviteValidator) inviterDisplayName(ctx context.Context, inviterID uuid.UUID) string {
	if v.users == nil {
		return ""
	}
	user, err := v.users.GetByID(ctx, inviterID)
	if err != nil {
		v.logger.Debug("inviter display name unavailable",
			zap.String("inviter_id", inviterID.String()),
			zap.Error(err),
		)
		return ""
	}
	return user.DisplayName
}

// DeriveReason explains why a snapshot is not valid. Expiry wins over
// exhaustion; anything else is INVALID.
func DeriveReason(status *model.InviteStatus, now time.Time) model.InviteReason {
	switch {
	case status.Expired(now):
		return model.InviteReasonExpired
	case status.Exhausted():
		return model.InviteReasonMaxUsesReached
	default:
		return model.InviteReasonInvalid
	}
}

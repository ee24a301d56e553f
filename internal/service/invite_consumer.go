package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roomies/invitehub/internal/model"
	"roomies/invitehub/internal/repository"
)

// ConsumeResult reports a consumption attempt. OK is true both for a new
// usage and for a repeat by the same user.
type ConsumeResult struct {
	OK              bool
	AlreadyConsumed bool
	Reason          model.InviteReason
}

type InviteConsumer interface {
	// Consume records that userID used the code. userID must come from an
	// authenticated principal; uuid.Nil yields ErrUnauthenticated. Store
	// failures wrap ErrInviteConsume.
	Consume(ctx context.Context, rawCode string, userID uuid.UUID) (ConsumeResult, error)
}

type inviteConsumer struct {
	store  repository.InviteStore
	logger *zap.Logger
	opts   inviteOptions
}

func NewInviteConsumer(store repository.InviteStore, logger *zap.Logger, opts ...InviteOption) InviteConsumer {
	return &inviteConsumer{
		store:  store,
		logger: logger.Named("invite.consumer"),
		opts:   buildInviteOptions(opts),
	}
}

func (c *inviteConsumer) Consume(ctx context.Context, rawCode string, userID uuid.UUID) (ConsumeResult, error) {
	if userID == uuid.Nil {
		return ConsumeResult{}, ErrUnauthenticated
	}
	code := normalizeCode(rawCode)
	if code == "" {
		return ConsumeResult{Reason: model.InviteReasonNoCode}, nil
	}

	ctx, cancel := withStoreTimeout(ctx, c.opts.storeTimeout)
	defer cancel()

	// The store re-checks everything at write time; no earlier snapshot is trusted.
	outcome, err := c.store.ConsumeInvite(ctx, code, userID)
	if err != nil {
		c.logger.Error("invite consume failed",
			zap.String("code_prefix", maskCode(code)),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return ConsumeResult{}, fmt.Errorf("%w: %w", ErrInviteConsume, err)
	}

	switch outcome {
	case model.ConsumeOutcomeConsumed:
		c.logger.Info("invite consumed",
			zap.String("code_prefix", maskCode(code)),
			zap.String("user_id", userID.String()),
		)
		return ConsumeResult{OK: true}, nil
	case model.ConsumeOutcomeAlreadyConsumed:
		return ConsumeResult{OK: true, AlreadyConsumed: true}, nil
	default:
		c.logger.Debug("invite declined",
			zap.String("code_prefix", maskCode(code)),
			zap.String("user_id", userID.String()),
			zap.String("reason", string(outcome.Reason())),
		)
		return ConsumeResult{Reason: outcome.Reason()}, nil
	}
}

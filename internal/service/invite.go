package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

const defaultStoreTimeout = 5 * time.Second

type inviteOptions struct {
	storeTimeout time.Duration
	now          func() time.Time
}

// InviteOption tunes the validator and consumer.
type InviteOption func(*inviteOptions)

// WithStoreTimeout bounds every store call. Zero or negative keeps the default.
func WithStoreTimeout(d time.Duration) InviteOption {
	return func(o *inviteOptions) {
		if d > 0 {
			o.storeTimeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) InviteOption {
	return func(o *inviteOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func buildInviteOptions(opts []InviteOption) inviteOptions {
	o := inviteOptions{storeTimeout: defaultStoreTimeout, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// normalizeCode trims surrounding whitespace. Codes are case-sensitive.
func normalizeCode(raw string) string {
	return strings.TrimSpace(raw)
}

// maskCode keeps enough of a code to correlate log lines without leaking a
// usable token.
func maskCode(code string) string {
	const keep = 3
	if utf8.RuneCountInString(code) <= keep {
		return "***"
	}
	runes := []rune(code)
	return string(runes[:keep]) + "***"
}

func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

package repository

import (
	"context"
	"time"
)

// StateStore abstracts short-lived key-value state: pending invite handles
// and refresh token ids. Implementations: Redis (multi-instance) or
// in-memory (local dev / single instance).
//
// Get returns (nil, nil) for missing or expired keys.
type StateStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Package ephemeral provides the keyed TTL stores behind OTP codes, OTP
// sessions, idempotency results and rate-limit counters.
//
// Memory implementations are single-instance only. Running more than one API
// process requires the Redis implementations so every instance sees the same
// keys.
package ephemeral

import (
	"context"
	"time"
)

// Store is a keyed value store with per-key expiry. A ttl <= 0 means no expiry.
type Store[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value V, ttl time.Duration) (bool, error)
	// Delete reports whether this call removed a live key.
	Delete(ctx context.Context, key string) (bool, error)
}

// Counter is a fixed-window counter. The first Incr of a window sets its
// expiry; later increments do not extend it.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

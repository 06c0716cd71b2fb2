// Package idempotency makes a side-effecting operation run at most once per
// client-supplied key.
package idempotency

import (
	"context"
	"strings"
	"time"

	"cabbooking/internal/domain"
	"cabbooking/internal/ephemeral"

	"golang.org/x/sync/singleflight"
)

const MaxKeyLength = 128

// ValidKey accepts 1..128 printable ASCII characters.
func ValidKey(key string) bool {
	if key == "" || len(key) > MaxKeyLength || strings.TrimSpace(key) != key {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < 0x21 || key[i] > 0x7e {
			return false
		}
	}
	return true
}

// Guard caches successful results by key. Failed work is never cached, so a
// client may retry a failed request with the same key.
//
// Concurrent callers with the same key inside one process share a single
// execution through singleflight; callers arriving after it finished read the
// stored result. With a shared Store (Redis) the stored result is visible to
// every instance, but two instances racing on a brand-new key can still both
// run work.
type Guard[R any] struct {
	Store ephemeral.Store[R]
	TTL   time.Duration

	group singleflight.Group
}

func NewGuard[R any](store ephemeral.Store[R], ttl time.Duration) *Guard[R] {
	return &Guard[R]{Store: store, TTL: ttl}
}

// Do returns the stored result for key or runs work and stores its result.
// replayed is true when the caller did not run work itself.
func (g *Guard[R]) Do(ctx context.Context, key string, work func(ctx context.Context) (R, error)) (result R, replayed bool, err error) {
	if cached, ok, err := g.lookup(ctx, key); err != nil || ok {
		return cached, ok, err
	}

	ran := false
	v, err, _ := g.group.Do(key, func() (any, error) {
		if cached, ok, err := g.lookup(ctx, key); err != nil {
			return nil, err
		} else if ok {
			return cached, nil
		}

		ran = true
		// The booking must finish even if this client goes away mid-flight;
		// followers are waiting on the same result.
		r, err := work(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if err := g.Store.Set(context.WithoutCancel(ctx), key, r, g.TTL); err != nil {
			return nil, domain.InternalError{Msg: "idempotency store unavailable", Err: err}
		}
		return r, nil
	})
	if err != nil {
		var zero R
		return zero, false, err
	}
	return v.(R), !ran, nil
}

func (g *Guard[R]) lookup(ctx context.Context, key string) (R, bool, error) {
	r, ok, err := g.Store.Get(ctx, key)
	if err != nil {
		var zero R
		return zero, false, domain.InternalError{Msg: "idempotency store unavailable", Err: err}
	}
	return r, ok, nil
}

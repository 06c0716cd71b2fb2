// Package ratelimit implements a fixed-window request limiter.
//
// Windows are fixed, not sliding: a client can spend Max at the end of one
// window and Max again at the start of the next, so up to 2*Max requests can
// land inside one Window-long span straddling the boundary.
package ratelimit

import (
	"context"
	"time"

	"cabbooking/internal/ephemeral"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Count      int64
	Limit      int64
	RetryAfter time.Duration
}

type Limiter struct {
	Counter ephemeral.Counter
	Prefix  string
	Window  time.Duration
	Max     int64
}

func New(counter ephemeral.Counter, prefix string, window time.Duration, max int64) Limiter {
	return Limiter{Counter: counter, Prefix: prefix, Window: window, Max: max}
}

// Allow counts one hit for key. Denied hits are counted too, so hammering a
// blocked key does not shorten the wait.
func (l Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	n, ttl, err := l.Counter.Incr(ctx, l.Prefix+key, l.Window)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{Allowed: n <= l.Max, Count: n, Limit: l.Max}
	if !d.Allowed {
		d.RetryAfter = ttl
		if d.RetryAfter <= 0 || d.RetryAfter > l.Window {
			d.RetryAfter = l.Window
		}
	}
	return d, nil
}

package ratelimit

import (
	"context"
	"testing"
	"time"

	"cabbooking/internal/ephemeral"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func TestFourthOTPSendWithinWindowIsLimited(t *testing.T) {
	clk := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	counter := ephemeral.NewMemoryCounter()
	counter.Now = clk.Now
	l := New(counter, "otp:phone:", 15*time.Minute, 3)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := l.Allow(ctx, "9876543210")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("call %d should be allowed", i)
		}
		clk.t = clk.t.Add(time.Minute)
	}

	d, err := l.Allow(ctx, "9876543210")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed {
		t.Fatalf("4th call must be limited")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > 900*time.Second {
		t.Fatalf("retryAfter = %s, want (0, 900s]", d.RetryAfter)
	}
	if d.RetryAfter != 12*time.Minute {
		t.Fatalf("retryAfter = %s, want remaining window 12m", d.RetryAfter)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(ephemeral.NewMemoryCounter(), "p:", time.Minute, 1)
	ctx := context.Background()

	if d, _ := l.Allow(ctx, "a"); !d.Allowed {
		t.Fatalf("a first call denied")
	}
	if d, _ := l.Allow(ctx, "b"); !d.Allowed {
		t.Fatalf("b first call denied")
	}
	if d, _ := l.Allow(ctx, "a"); d.Allowed {
		t.Fatalf("a second call allowed")
	}
}

func TestWindowResets(t *testing.T) {
	clk := &clock{t: time.Now()}
	counter := ephemeral.NewMemoryCounter()
	counter.Now = clk.Now
	l := New(counter, "", time.Minute, 1)
	ctx := context.Background()

	_, _ = l.Allow(ctx, "k")
	if d, _ := l.Allow(ctx, "k"); d.Allowed {
		t.Fatalf("second call in window allowed")
	}
	clk.t = clk.t.Add(time.Minute)
	if d, _ := l.Allow(ctx, "k"); !d.Allowed {
		t.Fatalf("call after window should be allowed")
	}
}

// Fixed windows let a burst straddling the boundary reach twice the limit.
func TestBoundaryBurstReachesTwiceTheLimit(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := &clock{t: start}
	counter := ephemeral.NewMemoryCounter()
	counter.Now = clk.Now
	l := New(counter, "", time.Minute, 3)
	ctx := context.Background()

	allowed := 0
	_, _ = l.Allow(ctx, "k") // opens the window at 09:00:00
	allowed++

	clk.t = start.Add(59 * time.Second)
	for i := 0; i < 2; i++ {
		if d, _ := l.Allow(ctx, "k"); d.Allowed {
			allowed++
		}
	}
	clk.t = start.Add(61 * time.Second)
	for i := 0; i < 3; i++ {
		if d, _ := l.Allow(ctx, "k"); d.Allowed {
			allowed++
		}
	}
	if allowed != 6 {
		t.Fatalf("allowed %d within 61s, want 6 (2x limit)", allowed)
	}
}

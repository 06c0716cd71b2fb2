package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"cabbooking/internal/domain"
	"cabbooking/internal/ephemeral"
)

func newSessionService(clock *fakeClock) SessionService {
	sessions := ephemeral.NewMemory[OTPSession]()
	sessions.Now = clock.Now
	claims := ephemeral.NewMemory[bool]()
	claims.Now = clock.Now
	return SessionService{
		Sessions: sessions,
		Claims:   claims,
		TTL:      10 * time.Minute,
		Grace:    time.Hour,
		Now:      clock.Now,
	}
}

func TestSessionConsumeOnce(t *testing.T) {
	ctx := context.Background()
	svc := newSessionService(newClock())

	token, ttl, err := svc.Create(ctx, "9876543210")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ttl != 10*time.Minute || token == "" {
		t.Fatalf("unexpected token %q ttl %v", token, ttl)
	}

	res, err := svc.Consume(ctx, token)
	if err != nil || !res.OK || res.Phone != "9876543210" {
		t.Fatalf("first consume: %+v %v", res, err)
	}
	res, err = svc.Consume(ctx, token)
	if err != nil || res.OK || res.Reason != SessionUsed {
		t.Fatalf("second consume: %+v %v", res, err)
	}
	if !domain.IsAlreadyUsed(res.Err()) {
		t.Fatalf("used session should map to ALREADY_USED, got %v", res.Err())
	}
}

func TestSessionConcurrentConsumeHasOneWinner(t *testing.T) {
	ctx := context.Background()
	svc := newSessionService(newClock())
	token, _, _ := svc.Create(ctx, "9876543210")

	const callers = 2
	results := make([]ConsumeResult, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], _ = svc.Consume(ctx, token)
		}(i)
	}
	close(start)
	wg.Wait()

	ok, used := 0, 0
	for _, r := range results {
		if r.OK {
			ok++
		} else if r.Reason == SessionUsed {
			used++
		}
	}
	if ok != 1 || used != 1 {
		t.Fatalf("expected one winner and one used, got %+v", results)
	}
}

func TestSessionExpiredAndInvalid(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	svc := newSessionService(clock)
	token, _, _ := svc.Create(ctx, "9876543210")

	clock.Advance(11 * time.Minute)
	res, err := svc.Consume(ctx, token)
	if err != nil || res.Reason != SessionExpired {
		t.Fatalf("expected expired, got %+v %v", res, err)
	}
	if !domain.IsUnauthorized(res.Err()) {
		t.Fatalf("expired should map to UNAUTHORIZED, got %v", res.Err())
	}

	res, _ = svc.Consume(ctx, "2c1b5a43-0000-4000-8000-000000000000")
	if res.Reason != SessionInvalid || !domain.IsUnauthorized(res.Err()) {
		t.Fatalf("unknown token: %+v", res)
	}
	res, _ = svc.Consume(ctx, "")
	if res.Reason != SessionInvalid {
		t.Fatalf("empty token: %+v", res)
	}
}

func TestSessionUsedStaysUsedAfterExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	svc := newSessionService(clock)
	token, _, _ := svc.Create(ctx, "9876543210")

	if res, _ := svc.Consume(ctx, token); !res.OK {
		t.Fatalf("consume: %+v", res)
	}
	clock.Advance(15 * time.Minute)
	if res, _ := svc.Consume(ctx, token); res.Reason != SessionUsed {
		t.Fatalf("expected used after expiry, got %+v", res)
	}
}

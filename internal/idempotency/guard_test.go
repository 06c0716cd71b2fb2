package idempotency

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cabbooking/internal/domain"
	"cabbooking/internal/ephemeral"
)

type response struct {
	Status int
	Body   []byte
}

func TestReplayReturnsStoredResult(t *testing.T) {
	g := NewGuard[response](ephemeral.NewMemory[response](), time.Hour)
	ctx := context.Background()
	var calls int32

	work := func(context.Context) (response, error) {
		n := atomic.AddInt32(&calls, 1)
		return response{Status: 201, Body: []byte{byte('0' + n)}}, nil
	}

	first, replayed, err := g.Do(ctx, "key-1", work)
	if err != nil || replayed {
		t.Fatalf("first call: err=%v replayed=%v", err, replayed)
	}
	for i := 0; i < 3; i++ {
		again, replayed, err := g.Do(ctx, "key-1", work)
		if err != nil {
			t.Fatalf("replay %d: %v", i, err)
		}
		if !replayed {
			t.Fatalf("replay %d not flagged", i)
		}
		if string(again.Body) != string(first.Body) || again.Status != first.Status {
			t.Fatalf("replay %d returned %+v, want %+v", i, again, first)
		}
	}
	if calls != 1 {
		t.Fatalf("work ran %d times, want 1", calls)
	}
}

func TestConcurrentSameKeyRunsOnce(t *testing.T) {
	g := NewGuard[response](ephemeral.NewMemory[response](), time.Hour)
	ctx := context.Background()
	var calls int32
	release := make(chan struct{})

	work := func(context.Context) (response, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return response{Status: 201, Body: []byte(`{"booking_id":1}`)}, nil
	}

	const n = 50
	var wg sync.WaitGroup
	results := make([]response, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = g.Do(ctx, "same", work)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Fatalf("work ran %d times, want 1", calls)
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if string(results[i].Body) != `{"booking_id":1}` {
			t.Fatalf("caller %d got %s", i, results[i].Body)
		}
	}
}

func TestDifferentKeysRunIndependently(t *testing.T) {
	g := NewGuard[int](ephemeral.NewMemory[int](), time.Hour)
	ctx := context.Background()
	var calls int32
	work := func(context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	var wg sync.WaitGroup
	for _, k := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			if _, _, err := g.Do(ctx, k, work); err != nil {
				t.Errorf("%s: %v", k, err)
			}
		}(k)
	}
	wg.Wait()
	if calls != 4 {
		t.Fatalf("work ran %d times, want 4", calls)
	}
}

func TestFailuresAreNotCached(t *testing.T) {
	g := NewGuard[int](ephemeral.NewMemory[int](), time.Hour)
	ctx := context.Background()
	boom := errors.New("fare mismatch")
	var calls int32

	_, _, err := g.Do(ctx, "k", func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected work error, got %v", err)
	}

	v, replayed, err := g.Do(ctx, "k", func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	})
	if err != nil || replayed || v != 42 {
		t.Fatalf("retry after failure: v=%d replayed=%v err=%v", v, replayed, err)
	}
	if calls != 2 {
		t.Fatalf("work ran %d times, want 2", calls)
	}
}

type brokenStore struct{ ephemeral.Store[int] }

func (brokenStore) Get(context.Context, string) (int, bool, error) {
	return 0, false, errors.New("connection refused")
}

func TestStoreFailureIsFatal(t *testing.T) {
	g := NewGuard[int](brokenStore{}, time.Hour)
	ran := false
	_, _, err := g.Do(context.Background(), "k", func(context.Context) (int, error) {
		ran = true
		return 1, nil
	})
	if !domain.IsInternal(err) {
		t.Fatalf("expected InternalError, got %v", err)
	}
	if ran {
		t.Fatalf("work must not run when the store is unavailable")
	}
}

func TestValidKey(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"abc-123", true},
		{" padded", false},
		{"has space", false},
		{"550e8400-e29b-41d4-a716-446655440000", true},
		{strings.Repeat("a", MaxKeyLength), true},
		{strings.Repeat("a", MaxKeyLength+1), false},
	}
	for _, tc := range cases {
		if got := ValidKey(tc.key); got != tc.want {
			t.Errorf("ValidKey(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

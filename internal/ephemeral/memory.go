package ephemeral

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value V
	exp   time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.exp.IsZero() && !now.Before(e.exp)
}

// Memory is an in-process Store.
type Memory[V any] struct {
	mu    sync.Mutex
	items map[string]entry[V]
	Now   func() time.Time
}

func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{items: map[string]entry[V]{}}
}

func (m *Memory[V]) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Memory[V]) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

// live returns the entry for key, dropping it if expired. Caller holds mu.
func (m *Memory[V]) live(key string) (entry[V], bool) {
	e, ok := m.items[key]
	if !ok {
		return e, false
	}
	if e.expired(m.now()) {
		delete(m.items, key)
		return e, false
	}
	return e, true
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		var zero V
		return zero, false, nil
	}
	return e.value, true, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry[V]{value: value, exp: m.expiry(ttl)}
	return nil
}

func (m *Memory[V]) SetNX(_ context.Context, key string, value V, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(key); ok {
		return false, nil
	}
	m.items[key] = entry[V]{value: value, exp: m.expiry(ttl)}
	return true, nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(key); !ok {
		return false, nil
	}
	delete(m.items, key)
	return true, nil
}

// Sweep drops expired entries and returns how many were removed.
func (m *Memory[V]) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

// Sweeper drops expired entries and reports how many went.
type Sweeper interface {
	Sweep() int
}

// StartJanitor sweeps every store each interval until ctx is done.
func StartJanitor(ctx context.Context, interval time.Duration, stores ...Sweeper) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				for _, s := range stores {
					s.Sweep()
				}
			}
		}
	}()
}

// MemoryCounter is an in-process Counter.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]entry[int64]
	Now    func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: map[string]entry[int64]{}}
}

func (c *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.counts[key]
	if !ok || e.expired(now) {
		e = entry[int64]{value: 0, exp: now.Add(window)}
	}
	e.value++
	c.counts[key] = e
	return e.value, e.exp.Sub(now), nil
}

func (c *MemoryCounter) Sweep() int {
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.counts {
		if e.expired(now) {
			delete(c.counts, k)
			n++
		}
	}
	return n
}

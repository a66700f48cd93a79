// Package cache provides a process-wide key-value store with per-entry
// expiry, shared across concurrent tool invocations.
package cache

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is applied to every cached category: opening lists, per-opening
// candidate and stage pools, and user-info lookups.
const DefaultTTL = 5 * time.Minute

// Cacher memoizes expensive lookups for a bounded time window.
type Cacher interface {
	// GetOrCompute returns the live value for key if present, otherwise it
	// invokes compute, stores the result and returns it. A failed compute
	// stores nothing so a later retry can succeed.
	GetOrCompute(key string, ttl time.Duration, compute func() (any, error)) (any, error)
}

type entry struct {
	value      any
	insertedAt time.Time
	ttl        time.Duration
}

type inflight struct {
	done  chan struct{}
	value any
	err   error
}

// Store is the in-process Cacher implementation. Concurrent misses for the
// same key wait on a single compute instead of hitting the upstream API in
// parallel. Keys are never evicted, only superseded; the set of possible
// keys is small and bounded.
type Store struct {
	now func() time.Time

	mu       sync.Mutex
	entries  map[string]entry
	inflight map[string]*inflight
}

func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock builds a Store with an injectable clock for expiry tests.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:      now,
		entries:  make(map[string]entry),
		inflight: make(map[string]*inflight),
	}
}

func (s *Store) GetOrCompute(key string, ttl time.Duration, compute func() (any, error)) (any, error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && s.now().Before(e.insertedAt.Add(e.ttl)) {
		s.mu.Unlock()
		return e.value, nil
	}

	if call, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		<-call.done
		return call.value, call.err
	}

	call := &inflight{done: make(chan struct{})}
	s.inflight[key] = call
	s.mu.Unlock()

	// Release waiters even when compute panics, otherwise the key would
	// block every later lookup forever. The panic itself propagates.
	completed := false
	defer func() {
		if !completed {
			call.err = fmt.Errorf("computing cache key %q panicked", key)
		}

		s.mu.Lock()
		delete(s.inflight, key)
		if completed && call.err == nil {
			s.entries[key] = entry{value: call.value, insertedAt: s.now(), ttl: ttl}
		}
		s.mu.Unlock()

		close(call.done)
	}()

	call.value, call.err = compute()
	completed = true

	return call.value, call.err
}

// Fetch is a typed wrapper around Store.GetOrCompute.
func Fetch[T any](c Cacher, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	value, err := c.GetOrCompute(key, ttl, func() (any, error) {
		return compute()
	})
	if err != nil {
		var zero T
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache key %q holds %T, not %T", key, value, zero)
	}

	return typed, nil
}

// NoOp always invokes compute and stores nothing. Used in tests that need
// strict cache-miss behavior.
type NoOp struct{}

func (NoOp) GetOrCompute(_ string, _ time.Duration, compute func() (any, error)) (any, error) {
	return compute()
}

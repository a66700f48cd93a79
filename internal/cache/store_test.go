package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetOrComputeCachesWithinTTL(t *testing.T) {
	now := time.Unix(1000, 0)
	store := NewWithClock(func() time.Time { return now })

	calls := 0
	compute := func() (any, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		value, err := store.GetOrCompute("key", 5*time.Minute, compute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "value" {
			t.Fatalf("got %v, want value", value)
		}
	}

	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
}

func TestGetOrComputeRecomputesAfterExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	store := NewWithClock(func() time.Time { return now })

	calls := 0
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	if _, err := store.GetOrCompute("key", 5*time.Minute, compute); err != nil {
		t.Fatal(err)
	}

	// One second past the TTL.
	now = now.Add(5*time.Minute + time.Second)

	value, err := store.GetOrCompute("key", 5*time.Minute, compute)
	if err != nil {
		t.Fatal(err)
	}
	if value != 2 {
		t.Errorf("expected a fresh value after expiry, got %v", value)
	}
	if calls != 2 {
		t.Errorf("compute ran %d times, want 2", calls)
	}
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	store := New()

	calls := 0
	failing := errors.New("upstream down")
	compute := func() (any, error) {
		calls++
		if calls == 1 {
			return nil, failing
		}
		return "recovered", nil
	}

	if _, err := store.GetOrCompute("key", time.Minute, compute); !errors.Is(err, failing) {
		t.Fatalf("got err %v, want %v", err, failing)
	}

	value, err := store.GetOrCompute("key", time.Minute, compute)
	if err != nil {
		t.Fatalf("retry should succeed, got %v", err)
	}
	if value != "recovered" {
		t.Errorf("got %v, want recovered", value)
	}
}

func TestGetOrComputeDeduplicatesConcurrentMisses(t *testing.T) {
	store := New()

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (any, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	const workers = 10
	var wg sync.WaitGroup
	results := make([]any, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, err := store.GetOrCompute("key", time.Minute, compute)
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
			}
			results[i] = value
		}(i)
	}

	// Give every worker a chance to reach the cache before the single
	// compute finishes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("compute ran %d times, want 1", got)
	}
	for i, value := range results {
		if value != "shared" {
			t.Errorf("worker %d got %v, want shared", i, value)
		}
	}
}

func TestGetOrComputePanicDoesNotWedgeKey(t *testing.T) {
	store := New()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("panic should propagate to the caller")
			}
		}()
		store.GetOrCompute("key", time.Minute, func() (any, error) {
			panic("boom")
		})
	}()

	// The key must be usable again, not blocked on a dead inflight entry.
	value, err := store.GetOrCompute("key", time.Minute, func() (any, error) {
		return "recovered", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if value != "recovered" {
		t.Errorf("got %v, want recovered", value)
	}
}

func TestGetOrComputePanicReleasesWaiters(t *testing.T) {
	store := New()

	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		defer func() { recover() }()
		store.GetOrCompute("key", time.Minute, func() (any, error) {
			close(started)
			<-release
			panic("boom")
		})
	}()

	<-started

	waiterErr := make(chan error, 1)
	go func() {
		_, err := store.GetOrCompute("key", time.Minute, func() (any, error) {
			return "own compute", nil
		})
		waiterErr <- err
	}()

	// Let the waiter attach to the inflight entry before the panic fires.
	time.Sleep(50 * time.Millisecond)
	close(release)

	select {
	case err := <-waiterErr:
		// Either the waiter shared the panicking compute and got its error,
		// or it arrived after cleanup and computed its own value.
		_ = err
	case <-time.After(5 * time.Second):
		t.Fatal("waiter is still blocked after the compute panicked")
	}
}

func TestFetchTyped(t *testing.T) {
	store := New()

	value, err := Fetch(store, "ints", time.Minute, func() ([]int, error) {
		return []int{1, 2, 3}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(value) != 3 {
		t.Fatalf("got %v", value)
	}

	// Same key, different type: the stored value does not assert.
	if _, err := Fetch(store, "ints", time.Minute, func() (string, error) {
		return "", nil
	}); err == nil {
		t.Error("expected a type mismatch error")
	}
}

func TestNoOpAlwaysComputes(t *testing.T) {
	calls := 0
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	var cache NoOp
	cache.GetOrCompute("key", time.Minute, compute)
	cache.GetOrCompute("key", time.Minute, compute)

	if calls != 2 {
		t.Errorf("compute ran %d times, want 2", calls)
	}
}

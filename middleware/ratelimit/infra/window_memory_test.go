package infra

import (
	"context"
	"sync"
	"testing"
	"time"

	"api-gateway/middleware/ratelimit/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestWindowStore_RejectsAfterLimitWithinWindow(t *testing.T) {
	clock := newFakeClock()
	s := NewWindowStore(100, 15*time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	for i := 1; i <= 100; i++ {
		q, err := s.Take(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !q.Allowed {
			t.Fatalf("request %d: expected allowed", i)
		}
		if q.Remaining != 100-i {
			t.Fatalf("request %d: expected remaining %d, got %d", i, 100-i, q.Remaining)
		}
	}

	q, _ := s.Take(ctx, "10.0.0.1")
	if q.Allowed {
		t.Fatalf("expected 101st request to be rejected")
	}
	if q.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", q.Remaining)
	}
	if want := clock.Now().Add(15 * time.Minute); !q.ResetAt.Equal(want) {
		t.Fatalf("expected reset at %s, got %s", want, q.ResetAt)
	}
}

func TestWindowStore_KeysAreIndependent(t *testing.T) {
	s := NewWindowStore(1, time.Minute, WithClock(newFakeClock().Now))
	ctx := context.Background()

	if q, _ := s.Take(ctx, "a"); !q.Allowed {
		t.Fatalf("expected first request of a to pass")
	}
	if q, _ := s.Take(ctx, "b"); !q.Allowed {
		t.Fatalf("expected first request of b to pass")
	}
	if q, _ := s.Take(ctx, "a"); q.Allowed {
		t.Fatalf("expected second request of a to be rejected")
	}
}

func TestWindowStore_ResetsWhenWindowElapses(t *testing.T) {
	clock := newFakeClock()
	s := NewWindowStore(2, 15*time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = s.Take(ctx, "k")
	}
	clock.Advance(15 * time.Minute)

	q, _ := s.Take(ctx, "k")
	if !q.Allowed {
		t.Fatalf("expected new window to allow request")
	}
	if q.Remaining != 1 {
		t.Fatalf("expected remaining 1 in fresh window, got %d", q.Remaining)
	}
}

func TestWindowStore_ConcurrentTakesCountExactly(t *testing.T) {
	s := NewWindowStore(100, time.Hour)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 250; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, _ := s.Take(ctx, domain.Key("shared"))
			if q.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 100 {
		t.Fatalf("expected exactly 100 allowed, got %d", allowed)
	}
}

func TestWindowStore_CleanupDropsExpiredWindows(t *testing.T) {
	clock := newFakeClock()
	s := NewWindowStore(10, time.Minute, WithClock(clock.Now))
	ctx := context.Background()

	_, _ = s.Take(ctx, "old")
	clock.Advance(30 * time.Second)
	_, _ = s.Take(ctx, "new")
	clock.Advance(45 * time.Second)

	s.Cleanup()
	if got := s.Len(); got != 1 {
		t.Fatalf("expected 1 live window after cleanup, got %d", got)
	}

	s.Reset()
	if got := s.Len(); got != 0 {
		t.Fatalf("expected empty store after reset, got %d", got)
	}
}

func TestWindowStore_JanitorUsesCleanupInterval(t *testing.T) {
	clock := newFakeClock()
	s := NewWindowStore(10, time.Minute,
		WithClock(clock.Now),
		WithWindowCleanupEvery(5*time.Millisecond),
	)

	_, _ = s.Take(context.Background(), "10.0.0.1")
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartJanitor(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("janitor did not purge the expired window")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWindowStore_ZeroIntervalDisablesJanitor(t *testing.T) {
	clock := newFakeClock()
	s := NewWindowStore(10, time.Minute,
		WithClock(clock.Now),
		WithWindowCleanupEvery(0),
	)

	_, _ = s.Take(context.Background(), "10.0.0.1")
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartJanitor(ctx)

	time.Sleep(20 * time.Millisecond)
	if got := s.Len(); got != 1 {
		t.Fatalf("expected entry to stay without janitor, got %d", got)
	}
}

package infra

import (
	"context"
	"sync"
	"testing"
	"time"

	"contact-gateway/middleware/ratelimit/domain"
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

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestMemoryWindowStore_FirstHitOpensWindow(t *testing.T) {
	clock := newClock()
	s := NewMemoryWindowStore(WithClock(clock.Now))

	win, err := s.Hit(context.Background(), "1.2.3.4", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if win.Count != 1 || win.Remaining != time.Hour {
		t.Fatalf("expected fresh window, got %+v", win)
	}
}

func TestMemoryWindowStore_CountsWithinWindow(t *testing.T) {
	clock := newClock()
	s := NewMemoryWindowStore(WithClock(clock.Now))
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		win, _ := s.Hit(ctx, "k", time.Hour)
		if win.Count != int64(i) {
			t.Fatalf("hit %d: expected count %d, got %d", i, i, win.Count)
		}
		clock.Advance(time.Minute)
	}

	win, _ := s.Hit(ctx, "k", time.Hour)
	if want := time.Hour - 6*time.Minute; win.Remaining != want {
		t.Fatalf("expected remaining %s, got %s", want, win.Remaining)
	}
}

func TestMemoryWindowStore_KeysAreIndependent(t *testing.T) {
	s := NewMemoryWindowStore(WithClock(newClock().Now))
	ctx := context.Background()

	_, _ = s.Hit(ctx, "a", time.Hour)
	_, _ = s.Hit(ctx, "a", time.Hour)
	win, _ := s.Hit(ctx, "b", time.Hour)
	if win.Count != 1 {
		t.Fatalf("expected separate counter for key b, got %d", win.Count)
	}
}

func TestMemoryWindowStore_ResetsAfterWindow(t *testing.T) {
	clock := newClock()
	s := NewMemoryWindowStore(WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, _ = s.Hit(ctx, "k", time.Hour)
	}

	// exatamente no reset ainda é a mesma janela
	clock.Advance(time.Hour)
	if win, _ := s.Hit(ctx, "k", time.Hour); win.Count != 7 {
		t.Fatalf("expected same window at reset instant, got count %d", win.Count)
	}

	clock.Advance(time.Second)
	win, _ := s.Hit(ctx, "k", time.Hour)
	if win.Count != 1 || win.Remaining != time.Hour {
		t.Fatalf("expected new window after expiry, got %+v", win)
	}
}

func TestMemoryWindowStore_CleanupRemovesExpiredWindows(t *testing.T) {
	clock := newClock()
	s := NewMemoryWindowStore(WithClock(clock.Now), WithCleanupEvery(0))
	ctx := context.Background()

	_, _ = s.Hit(ctx, "old", time.Minute)
	clock.Advance(30 * time.Second)
	_, _ = s.Hit(ctx, "fresh", time.Minute)
	clock.Advance(31 * time.Second)

	s.Cleanup()

	if s.Len() != 1 {
		t.Fatalf("expected only the fresh window to survive, got %d entries", s.Len())
	}
	if win, _ := s.Hit(ctx, domain.Key("fresh"), time.Minute); win.Count != 2 {
		t.Fatalf("expected fresh window to keep its count, got %d", win.Count)
	}
}

func TestMemoryWindowStore_ConcurrentHitsAreCounted(t *testing.T) {
	s := NewMemoryWindowStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Hit(ctx, "k", time.Hour)
		}()
	}
	wg.Wait()

	if win, _ := s.Hit(ctx, "k", time.Hour); win.Count != 51 {
		t.Fatalf("expected 51 hits, got %d", win.Count)
	}
}

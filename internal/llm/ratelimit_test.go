package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock advances only when the limiter sleeps, so spacing tests run
// instantly.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return nil
}

func TestLimiterFirstCallImmediate(t *testing.T) {
	clock := newFakeClock()
	start := clock.Now()
	l := NewLimiterWithClock(1500*time.Millisecond, clock.Now, clock.Sleep)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := clock.Now(); !got.Equal(start) {
		t.Errorf("first call slept: clock moved %v", got.Sub(start))
	}
}

func TestLimiterEnforcesSpacingAcrossWorkers(t *testing.T) {
	const calls = 120
	interval := 1500 * time.Millisecond

	clock := newFakeClock()
	start := clock.Now()
	l := NewLimiterWithClock(interval, clock.Now, clock.Sleep)

	var wg sync.WaitGroup
	for range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Wait(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	// Only the limiter's sleep advances the fake clock, so the final
	// clock reading is exactly the sum of enforced gaps.
	want := time.Duration(calls-1) * interval
	if got := clock.Now().Sub(start); got != want {
		t.Errorf("elapsed = %v, want %v", got, want)
	}
}

func TestLimiterSkipsWaitAfterIdle(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiterWithClock(time.Second, clock.Now, clock.Sleep)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Idle longer than the interval; the next call must not sleep.
	clock.Sleep(context.Background(), 5*time.Second)
	before := clock.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := clock.Now(); !got.Equal(before) {
		t.Errorf("limiter slept after idle period: %v", got.Sub(before))
	}
}

func TestLimiterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewLimiterWithClock(time.Second, nil, func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	})
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first call should not sleep: %v", err)
	}
	if err := l.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

package llm

import (
	"context"
	"sync"
	"time"

	"github.com/SamarthTiwari16/DepoIndex/constants"
)

// Limiter enforces a minimum interval between calls to the AI backend.
// The upstream API applies its own rate limits and rejects bursts, so
// callers that would exceed the interval block until it has elapsed.
//
// The last-call timestamp is the only state shared across concurrent
// workers; the read-then-update (including the wait itself) happens in
// one critical section so workers cannot observe stale elapsed times.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter returns a limiter on the real clock. A non-positive
// interval falls back to the default spacing.
func NewLimiter(interval time.Duration) *Limiter {
	return NewLimiterWithClock(interval, nil, nil)
}

// NewLimiterWithClock injects the clock and sleep function; nils select
// real time. Tests use this to verify spacing without wall-clock waits.
func NewLimiterWithClock(interval time.Duration, now func() time.Time, sleep func(context.Context, time.Duration) error) *Limiter {
	if interval <= 0 {
		interval = constants.MinCallInterval
	}
	if now == nil {
		now = time.Now
	}
	if sleep == nil {
		sleep = sleepCtx
	}
	return &Limiter{interval: interval, now: now, sleep: sleep}
}

// Wait blocks until the minimum interval since the previous call has
// elapsed, then records this call. Returns early only on ctx
// cancellation, in which case the call slot is not consumed.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.last.IsZero() {
		if wait := l.interval - now.Sub(l.last); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	l.last = l.now()
	return nil
}

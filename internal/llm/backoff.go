package llm

import (
	"context"
	"time"

	"github.com/SamarthTiwari16/DepoIndex/constants"
)

// Backoff is an explicit retry policy: a bounded number of attempts with
// exponentially growing delays between them. The sleep function is
// injectable so tests run against a fake clock.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64

	// SleepFn overrides the context-aware sleep; nil means real time.
	SleepFn func(ctx context.Context, d time.Duration) error
}

// DefaultBackoff matches the pipeline's retry discipline: 3 attempts,
// delays doubling from a 1-second base.
func DefaultBackoff() Backoff {
	return Backoff{
		MaxAttempts: constants.MaxRetryAttempts,
		BaseDelay:   constants.RetryBaseDelay,
		Multiplier:  2,
	}
}

// Delay returns the pause before retry number attempt (1-based; the
// delay after the first failed attempt is the base delay).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(b.BaseDelay)
	for i := 1; i < attempt; i++ {
		d *= b.Multiplier
	}
	return time.Duration(d)
}

// Sleep blocks for the attempt's delay or until ctx is cancelled.
func (b Backoff) Sleep(ctx context.Context, attempt int) error {
	sleep := b.SleepFn
	if sleep == nil {
		sleep = sleepCtx
	}
	return sleep(ctx, b.Delay(attempt))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package llm

import (
	"context"
	"time"
)

// RetryPolicy bounds call attempts. Delays[i] is the wait after attempt i fails;
// attempts past the end of Delays reuse the last entry.
type RetryPolicy struct {
	MaxAttempts int
	Delays      []time.Duration
}

// DefaultRetryPolicy is three attempts with 2s and 5s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delays:      []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second},
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns the wait after the given zero-based attempt failed.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if len(p.Delays) == 0 || attempt < 0 {
		return 0
	}
	if attempt >= len(p.Delays) {
		return p.Delays[len(p.Delays)-1]
	}
	return p.Delays[attempt]
}

// Sleeper waits between attempts. Sleep returns early with ctx.Err() when the
// context ends first.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper waits on a real timer.
var TimerSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
})

// Package retry wraps an async operation with bounded exponential backoff.
// It is I/O free: the operation is injected and the delay is a timed
// suspension that respects context cancellation instead of blocking the
// runtime.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrNoAttempts is returned when the loop is configured with MaxAttempts == 0.
// The zero-attempt case is a deliberate policy: fail fast rather than treat
// the operation as vacuously successful.
var ErrNoAttempts = errors.New("retry: no attempts configured")

// Operation is one attemptable unit of work.
type Operation func(ctx context.Context) error

// Config bounds the retry loop. Delay before attempt k (zero-indexed, k >= 1)
// is min(BaseDelay * 2^k, MaxDelay); the first attempt runs immediately.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Result captures the loop outcome. Error holds the last attempt's error
// when Success is false; Attempts counts invocations actually made.
type Result struct {
	Success  bool
	Attempts int
	Error    error
}

// Do runs op up to cfg.MaxAttempts times, returning as soon as an attempt
// succeeds. MaxAttempts == 0 is treated as "no attempt": the operation is
// never invoked and the result is an immediate failure. Do never panics and
// never returns a nil-error failure.
func Do(ctx context.Context, op Operation, cfg Config) Result {
	if cfg.MaxAttempts <= 0 {
		return Result{Success: false, Attempts: 0, Error: ErrNoAttempts}
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, delayFor(attempt, cfg)); err != nil {
				return Result{Success: false, Attempts: attempt, Error: err}
			}
		}
		if err := op(ctx); err != nil {
			lastErr = err
			continue
		}
		return Result{Success: true, Attempts: attempt + 1}
	}
	return Result{Success: false, Attempts: cfg.MaxAttempts, Error: lastErr}
}

func delayFor(attempt int, cfg Config) time.Duration {
	d := cfg.BaseDelay << uint(attempt)
	if d < 0 || (cfg.MaxDelay > 0 && d > cfg.MaxDelay) {
		return cfg.MaxDelay
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

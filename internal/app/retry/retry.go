// Package retry wraps a single upstream call with bounded, backoff-based retries.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy configures Do. Backoff(i) is the wait after failed attempt i (0-based)
// and should grow with i.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Retryable   func(err error) bool
	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Exponential returns base, 2*base, 4*base, ... capped at max (max <= 0 means no cap).
func Exponential(base, max time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		d := base
		for i := 0; i < attempt; i++ {
			d *= 2
			if max > 0 && d >= max {
				return max
			}
		}
		if max > 0 && d > max {
			return max
		}
		return d
	}
}

// CheckExponential reports an error when Exponential(base, max) would not
// grow strictly across the waits of an attempts-long run: a non-positive base,
// base at or above max, or a doubling that reaches past max before the last wait.
func CheckExponential(base, max time.Duration, attempts int) error {
	if attempts < 2 {
		return nil
	}
	if base <= 0 {
		return fmt.Errorf("retry base delay must be positive, got %s", base)
	}
	if max <= 0 {
		return nil
	}
	if base >= max {
		return fmt.Errorf("retry base delay %s must be below max delay %s", base, max)
	}
	last := base
	for i := 0; i < attempts-2; i++ {
		last *= 2
		if last > max {
			return fmt.Errorf("%d attempts from %s exceed max delay %s; backoff would plateau", attempts, base, max)
		}
	}
	return nil
}

// Do runs op until it succeeds, fails with a non-retryable error, or runs out
// of attempts. Waiting honours ctx; a cancelled ctx ends the loop with ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if p.Retryable == nil || !p.Retryable(err) {
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
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

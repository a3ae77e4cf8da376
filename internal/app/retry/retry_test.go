package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/planora/internal/app/retry"
	"github.com/PabloGalante/planora/internal/domain"
)

var (
	overloaded = &domain.UpstreamError{Op: "infer", Code: 503, Retryable: true, Err: errors.New("model overloaded")}
	forbidden  = &domain.UpstreamError{Op: "infer", Code: 403, Err: errors.New("permission denied")}
)

func policy(max int, waits *[]time.Duration) retry.Policy {
	return retry.Policy{
		MaxAttempts: max,
		Backoff:     retry.Exponential(time.Millisecond, 0),
		Retryable:   domain.IsRetryable,
		OnRetry: func(_ int, _ error, wait time.Duration) {
			*waits = append(*waits, wait)
		},
	}
}

func TestDoSucceedsOnThirdAttempt(t *testing.T) {
	var waits []time.Duration
	calls := 0

	got, err := retry.Do(context.Background(), policy(3, &waits), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", overloaded
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, waits)
}

func TestDoStopsAtMaxAttemptsWithIncreasingBackoff(t *testing.T) {
	var waits []time.Duration
	calls := 0

	_, err := retry.Do(context.Background(), policy(4, &waits), func(context.Context) (int, error) {
		calls++
		return 0, overloaded
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, overloaded)
	assert.Equal(t, 4, calls)
	require.Len(t, waits, 3)
	for i := 1; i < len(waits); i++ {
		assert.Greater(t, waits[i], waits[i-1])
	}
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	var waits []time.Duration
	calls := 0

	_, err := retry.Do(context.Background(), policy(5, &waits), func(context.Context) (int, error) {
		calls++
		return 0, forbidden
	})

	assert.ErrorIs(t, err, forbidden)
	assert.Equal(t, 1, calls)
	assert.Empty(t, waits)
}

func TestDoHonoursCancellationBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	p := retry.Policy{
		MaxAttempts: 5,
		Backoff:     func(int) time.Duration { return time.Hour },
		Retryable:   domain.IsRetryable,
		OnRetry:     func(int, error, time.Duration) { cancel() },
	}

	_, err := retry.Do(ctx, p, func(context.Context) (int, error) {
		calls++
		return 0, overloaded
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestExponentialCaps(t *testing.T) {
	b := retry.Exponential(500*time.Millisecond, 4*time.Second)

	assert.Equal(t, 500*time.Millisecond, b(0))
	assert.Equal(t, time.Second, b(1))
	assert.Equal(t, 2*time.Second, b(2))
	assert.Equal(t, 4*time.Second, b(3))
	assert.Equal(t, 4*time.Second, b(10))
}

func TestCheckExponential(t *testing.T) {
	tests := []struct {
		name     string
		base     time.Duration
		max      time.Duration
		attempts int
		wantErr  bool
	}{
		{"defaults", 500 * time.Millisecond, 4 * time.Second, 3, false},
		{"last wait lands on max", 500 * time.Millisecond, 4 * time.Second, 5, false},
		{"plateau", 500 * time.Millisecond, 4 * time.Second, 6, true},
		{"base above max", 5 * time.Second, 4 * time.Second, 2, true},
		{"base equals max", 4 * time.Second, 4 * time.Second, 3, true},
		{"single attempt never waits", 5 * time.Second, time.Second, 1, false},
		{"uncapped", time.Millisecond, 0, 10, false},
		{"zero base", 0, time.Second, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := retry.CheckExponential(tt.base, tt.max, tt.attempts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			backoff := retry.Exponential(tt.base, tt.max)
			for i := 1; i < tt.attempts-1; i++ {
				assert.Greater(t, backoff(i), backoff(i-1), "wait %d", i)
			}
		})
	}
}

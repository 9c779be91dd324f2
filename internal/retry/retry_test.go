package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

var errPermanent = errors.New("permanent failure")

// recordingSleep captures requested waits without sleeping.
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func TestPolicy_Delay(t *testing.T) {
	policy := Policy{MaxAttempts: 10, BaseDelay: 2 * time.Second, MaxDelay: 60 * time.Second}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 0, expected: 0},
		{attempt: 1, expected: 0},
		{attempt: 2, expected: 2 * time.Second},
		{attempt: 3, expected: 4 * time.Second},
		{attempt: 4, expected: 8 * time.Second},
		{attempt: 5, expected: 16 * time.Second},
		{attempt: 6, expected: 32 * time.Second},
		{attempt: 7, expected: 60 * time.Second},
		{attempt: 50, expected: 60 * time.Second},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("attempt %d", tc.attempt), func(t *testing.T) {
			assert.Equal(t, tc.expected, policy.Delay(tc.attempt))
		})
	}
}

func TestPolicy_Defaults(t *testing.T) {
	build := BuildPolicy()
	assert.Equal(t, 3, build.MaxAttempts)
	assert.Equal(t, 2*time.Second, build.BaseDelay)
	assert.Equal(t, 60*time.Second, build.MaxDelay)
	require.NoError(t, build.Validate())

	task := TaskPolicy()
	assert.Equal(t, 2, task.MaxAttempts)
	assert.Equal(t, time.Second, task.BaseDelay)
	require.NoError(t, task.Validate())
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
	}{
		{name: "zero attempts", policy: Policy{MaxAttempts: 0, BaseDelay: time.Second, MaxDelay: time.Minute}},
		{name: "negative delay", policy: Policy{MaxAttempts: 1, BaseDelay: -time.Second, MaxDelay: time.Minute}},
		{name: "cap below base", policy: Policy{MaxAttempts: 1, BaseDelay: time.Minute, MaxDelay: time.Second}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.policy.Validate(), forgeerrors.ErrValueOutOfRange)
		})
	}
}

func TestDo_AlwaysFailing(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5} {
		t.Run(fmt.Sprintf("max %d", n), func(t *testing.T) {
			policy := Policy{MaxAttempts: n, BaseDelay: time.Second, MaxDelay: 3 * time.Second}
			rec := &recordingSleep{}
			attemptErrs := make([]error, n)
			for i := range attemptErrs {
				attemptErrs[i] = fmt.Errorf("attempt %d failed", i+1) //nolint:err113 // distinct per-attempt errors
			}

			calls := 0
			_, attempts, err := Do(context.Background(), policy, func(_ context.Context, attempt int) (string, error) {
				calls++
				return "", attemptErrs[attempt-1]
			}, WithSleep(rec.sleep))

			assert.Equal(t, n, calls)
			assert.Equal(t, n, attempts)
			require.ErrorIs(t, err, forgeerrors.ErrRetryExhausted)
			require.ErrorIs(t, err, attemptErrs[n-1])
			for i := 0; i < n-1; i++ {
				assert.NotErrorIs(t, err, attemptErrs[i])
			}

			require.Len(t, rec.delays, n-1)
			for i, d := range rec.delays {
				assert.Equal(t, policy.Delay(i+2), d)
			}
		})
	}
}

func TestDo_SucceedsAfterFailure(t *testing.T) {
	rec := &recordingSleep{}
	var retried []int

	result, attempts, err := Do(context.Background(), TaskPolicy(), func(_ context.Context, attempt int) (int, error) {
		if attempt == 1 {
			return 0, errPermanent
		}
		return 42, nil
	},
		WithSleep(rec.sleep),
		WithShouldRetry(func(error) bool { return true }),
		WithOnRetry(func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) }),
		WithLogger(zerolog.Nop(), "test"),
	)

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []int{2}, retried)
	assert.Equal(t, []time.Duration{time.Second}, rec.delays)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	rec := &recordingSleep{}
	calls := 0

	_, attempts, err := Do(context.Background(), BuildPolicy(), func(_ context.Context, _ int) (struct{}, error) {
		calls++
		return struct{}{}, errPermanent
	}, WithSleep(rec.sleep), WithShouldRetry(func(err error) bool { return !errors.Is(err, errPermanent) }))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, attempts)
	require.ErrorIs(t, err, errPermanent)
	assert.NotErrorIs(t, err, forgeerrors.ErrRetryExhausted)
	assert.Empty(t, rec.delays)
}

func TestDo_ContextErrorsAreNotRetried(t *testing.T) {
	calls := 0
	_, _, err := Do(context.Background(), BuildPolicy(), func(_ context.Context, _ int) (int, error) {
		calls++
		return 0, context.DeadlineExceeded
	})

	assert.Equal(t, 1, calls)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_CanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, attempts, err := Do(ctx, BuildPolicy(), func(_ context.Context, _ int) (int, error) {
		calls++
		cancel()
		return 0, errPermanent
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, attempts)
	require.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.True(t, IsRetryable(errPermanent))
}

func TestWrap(t *testing.T) {
	rec := &recordingSleep{}
	calls := 0
	wrapped := Wrap(Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		func(_ context.Context, attempt int) (string, error) {
			calls++
			if attempt < 3 {
				return "", errPermanent
			}
			return "ok", nil
		}, WithSleep(rec.sleep))

	got, err := wrapped(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)

	calls = 0
	_, err = wrapped(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "each call starts a fresh attempt sequence")
}

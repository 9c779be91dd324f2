package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/ctxutil"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// Operation is a single attempt. attempt is 1-based.
type Operation[R any] func(ctx context.Context, attempt int) (R, error)

// SleepFunc waits between attempts. Tests replace it to avoid real waits.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures a retry run.
type Option func(*settings)

type settings struct {
	sleep       SleepFunc
	shouldRetry func(error) bool
	onRetry     func(attempt int, delay time.Duration, err error)
	logger      zerolog.Logger
	name        string
}

// WithSleep replaces the wait between attempts.
func WithSleep(sleep SleepFunc) Option {
	return func(s *settings) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithShouldRetry sets the predicate that decides whether a failed attempt
// may be retried. Errors it rejects are returned as they are, without the
// exhaustion wrapper.
func WithShouldRetry(fn func(error) bool) Option {
	return func(s *settings) {
		if fn != nil {
			s.shouldRetry = fn
		}
	}
}

// WithOnRetry registers a callback invoked before each wait.
func WithOnRetry(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(s *settings) {
		s.onRetry = fn
	}
}

// WithLogger sets the logger used for per-attempt debug output.
func WithLogger(logger zerolog.Logger, name string) Option {
	return func(s *settings) {
		s.logger = logger
		s.name = name
	}
}

// IsRetryable is the default retry predicate: everything except context
// cancellation and deadline errors.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Do runs op until it succeeds, the policy is exhausted, the predicate
// rejects an error, or ctx is done. It returns the result of the last
// attempt and the number of attempts made.
//
// On exhaustion the returned error matches both ErrRetryExhausted and the
// error of the final attempt under errors.Is.
func Do[R any](ctx context.Context, policy Policy, op Operation[R], opts ...Option) (result R, attempts int, err error) {
	s := settings{
		sleep:       ctxutil.Sleep,
		shouldRetry: IsRetryable,
		logger:      zerolog.Nop(),
		name:        "operation",
	}
	for _, opt := range opts {
		opt(&s)
	}

	maxAttempts := policy.Attempts()
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := policy.Delay(attempt)
			if s.onRetry != nil {
				s.onRetry(attempt, delay, lastErr)
			}
			s.logger.Debug().
				Str("operation", s.name).
				Int("attempt", attempt).
				Dur("delay", delay).
				Err(lastErr).
				Msg("retrying after backoff")

			if sleepErr := s.sleep(ctx, delay); sleepErr != nil {
				return result, attempts, fmt.Errorf("%s interrupted during backoff: %w", s.name, sleepErr)
			}
		}

		attempts = attempt
		res, opErr := op(ctx, attempt)
		if opErr == nil {
			return res, attempts, nil
		}
		result = res
		lastErr = opErr

		if !s.shouldRetry(opErr) {
			return result, attempts, opErr
		}
	}

	return result, attempts, forgeerrors.Join(
		forgeerrors.ErrRetryExhausted,
		lastErr,
		fmt.Sprintf("%s failed after %d attempts", s.name, attempts),
	)
}

// Wrap turns op into a function that runs under policy every time it is
// called. It is the higher-order form of Do.
func Wrap[R any](policy Policy, op Operation[R], opts ...Option) func(ctx context.Context) (R, error) {
	return func(ctx context.Context) (R, error) {
		res, _, err := Do(ctx, policy, op, opts...)
		return res, err
	}
}

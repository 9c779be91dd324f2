// Package retry runs operations under an exponential backoff policy.
//
// Two policies are used by the executor: one around a whole build and one
// around each task. Both share the same delay rule: the wait before attempt
// k (k >= 2) is min(BaseDelay * 2^(k-2), MaxDelay).
package retry

import (
	"fmt"
	"time"

	"github.com/mrz1836/forge/internal/constants"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts" json:"max_attempts"`

	// BaseDelay is the wait before the second attempt.
	BaseDelay time.Duration `mapstructure:"base_delay" yaml:"base_delay" json:"base_delay"`

	// MaxDelay caps every wait.
	MaxDelay time.Duration `mapstructure:"max_delay" yaml:"max_delay" json:"max_delay"`
}

// BuildPolicy returns the default policy for a whole build.
func BuildPolicy() Policy {
	return Policy{
		MaxAttempts: constants.BuildMaxAttempts,
		BaseDelay:   constants.BuildBaseDelay,
		MaxDelay:    constants.MaxBackoffDelay,
	}
}

// TaskPolicy returns the default policy for a single task.
func TaskPolicy() Policy {
	return Policy{
		MaxAttempts: constants.TaskMaxAttempts,
		BaseDelay:   constants.TaskBaseDelay,
		MaxDelay:    constants.MaxBackoffDelay,
	}
}

// Delay returns the wait before the given 1-based attempt. The first attempt
// never waits.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 2 || p.BaseDelay <= 0 {
		return 0
	}
	delay := p.BaseDelay
	for i := 2; i < attempt; i++ {
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			break
		}
		delay *= 2
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Attempts returns MaxAttempts, treating anything below one as one.
func (p Policy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Validate reports whether the policy is usable.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d: %w", p.MaxAttempts, forgeerrors.ErrValueOutOfRange)
	}
	if p.BaseDelay < 0 {
		return fmt.Errorf("base_delay must not be negative, got %s: %w", p.BaseDelay, forgeerrors.ErrValueOutOfRange)
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("max_delay %s is below base_delay %s: %w", p.MaxDelay, p.BaseDelay, forgeerrors.ErrValueOutOfRange)
	}
	return nil
}

// Package task provides task lifecycle management for forge.
//
// This file implements the task state machine, which enforces valid state
// transitions and maintains an audit trail of all status changes.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, internal/retry,
//     internal/handler, internal/clock, std lib
//   - MUST NOT import: internal/cli, internal/workflow
package task

import (
	"fmt"
	"slices"
	"time"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// ValidTransitions defines all allowed state transitions in the task lifecycle.
//
//	Pending → InProgress, Failed
//	InProgress → Completed, Failed
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.TaskStatus][]constants.TaskStatus{
	constants.TaskStatusPending:    {constants.TaskStatusInProgress, constants.TaskStatusFailed},
	constants.TaskStatusInProgress: {constants.TaskStatusCompleted, constants.TaskStatusFailed},
}

// IsValidTransition checks if a transition from one status to another is allowed.
// Returns false for transitions from terminal states or to the same state.
func IsValidTransition(from, to constants.TaskStatus) bool {
	if from == to {
		return false
	}
	return slices.Contains(ValidTransitions[from], to)
}

// IsTerminalStatus returns true for states where no further transitions are allowed.
func IsTerminalStatus(status constants.TaskStatus) bool {
	return status == constants.TaskStatusCompleted || status == constants.TaskStatusFailed
}

// Transition validates and applies a state transition to the task, recording
// it in the task's history.
func Transition(task *domain.Task, to constants.TaskStatus, reason string, now time.Time) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", forgeerrors.ErrInvalidTransition)
	}

	if !IsValidTransition(task.Status, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s",
			forgeerrors.ErrInvalidTransition, task.Status, to)
	}

	record(task, to, reason, now)
	return nil
}

// forceFail moves a task to Failed from any status. Failing is allowed
// regardless of the current status so operators can stop a task that is
// already terminal.
func forceFail(task *domain.Task, reason string, now time.Time) {
	record(task, constants.TaskStatusFailed, reason, now)
}

func record(task *domain.Task, to constants.TaskStatus, reason string, now time.Time) {
	task.Transitions = append(task.Transitions, domain.Transition{
		FromStatus: task.Status,
		ToStatus:   to,
		Timestamp:  now,
		Reason:     reason,
	})
	task.Status = to
}

// Package errors provides centralized error handling for forge.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrValidation indicates a reference to an unknown task or dependency id.
	ErrValidation = errors.New("validation error")

	// ErrTaskNotFound indicates that no task exists with the requested id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrFileNotFound indicates a project file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidTransition indicates a status change the task state machine does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrUnknownDependency indicates a task depends on an id that is not in the graph.
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrGenerationFailed indicates the generation capability errored.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrEmptyGeneration indicates the generation capability returned no content.
	ErrEmptyGeneration = errors.New("generation returned empty content")

	// ErrRetryExhausted indicates every attempt allowed by a retry policy failed.
	// It is always joined with the error of the final attempt.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrTestFailure indicates an artifact failed structural checks and the one
	// allowed fix did not resolve it.
	ErrTestFailure = errors.New("artifact failed tests")

	// ErrDeploymentFailed indicates the deployer reported an unsuccessful deployment.
	ErrDeploymentFailed = errors.New("deployment failed")

	// ErrPersistence indicates the context snapshot could not be read or written.
	ErrPersistence = errors.New("snapshot persistence failed")

	// ErrSnapshotCorrupt indicates the snapshot could not be parsed or repaired.
	ErrSnapshotCorrupt = errors.New("snapshot is corrupt")

	// ErrLockTimeout indicates the snapshot lock could not be acquired in time.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrNoHandler indicates no handler is registered for a task category.
	ErrNoHandler = errors.New("no handler registered")

	// ErrCriticalTaskFailed indicates a high or critical priority task failed
	// and the rest of the plan was abandoned.
	ErrCriticalTaskFailed = errors.New("critical task failed")

	// ErrNoTasksCompleted indicates a run finished without completing any task.
	ErrNoTasksCompleted = errors.New("no tasks completed")

	// ErrBuildFailed indicates a build finished without success.
	ErrBuildFailed = errors.New("build failed")

	// ErrCommandNotConfigured indicates an external command was needed but not configured.
	ErrCommandNotConfigured = errors.New("command not configured")

	// ErrCommandFailed indicates an external command exited unsuccessfully.
	ErrCommandFailed = errors.New("command failed")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrValueOutOfRange indicates a configuration value falls outside its allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrEmptyValue indicates a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidOutputFormat indicates an unsupported --output value.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrNonInteractiveMode indicates a prompt was required but the terminal is not interactive.
	ErrNonInteractiveMode = errors.New("cannot prompt in non-interactive mode")

	// ErrOperationCanceled indicates the user declined a confirmation.
	ErrOperationCanceled = errors.New("operation canceled")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}

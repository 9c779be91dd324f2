// Package constants provides centralized constant values used throughout forge.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File names used by forge for state persistence.
const (
	// SnapshotFileName is the name of the JSON document holding a project's context memory.
	SnapshotFileName = "memory.json"

	// LockFileSuffix is appended to a snapshot path to form its lock file.
	LockFileSuffix = ".lock"
)

// Directory names and paths used by forge for organizing data.
const (
	// ForgeHome is the hidden directory name where forge stores all its data.
	// This directory is created in the user's home directory.
	ForgeHome = ".forge"

	// MemoryDir is the directory name where per-project snapshots are stored.
	MemoryDir = "memory"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// DefaultOutputDir is where generated projects are written when no directory is configured.
	DefaultOutputDir = "generated_projects"

	// DefaultProjectName names the project when the caller gives none.
	DefaultProjectName = "default"
)

// Timeout configurations for various operations.
const (
	// DefaultGenerationTimeout bounds a single call to the generation capability.
	DefaultGenerationTimeout = 5 * time.Minute

	// DefaultDeployTimeout bounds a single call to the deployer capability.
	DefaultDeployTimeout = 10 * time.Minute

	// LockTimeout is how long a snapshot save waits for the file lock.
	LockTimeout = 5 * time.Second

	// LockRetryInterval is the polling interval while waiting on the file lock.
	LockRetryInterval = 50 * time.Millisecond
)

// Retry configuration defaults for the two retry layers.
const (
	// BuildMaxAttempts is the default attempt budget for a whole build.
	BuildMaxAttempts = 3

	// BuildBaseDelay is the delay before the second build attempt.
	BuildBaseDelay = 2 * time.Second

	// TaskMaxAttempts is the default attempt budget for a single task.
	TaskMaxAttempts = 2

	// TaskBaseDelay is the delay before the second task attempt.
	TaskBaseDelay = 1 * time.Second

	// MaxBackoffDelay caps the exponential backoff at both layers.
	MaxBackoffDelay = 60 * time.Second
)

// Context store defaults.
const (
	// DefaultContextEntries is how many conversation entries a handler prompt receives.
	DefaultContextEntries = 5

	// DefaultTokenCacheSize is the number of token sets kept in the tokenizer cache.
	DefaultTokenCacheSize = 512

	// InsightSliceSize is how many recent error and success records an insight query exposes.
	InsightSliceSize = 10

	// DefaultEstimatedTime is the planning estimate attached to every phase.
	DefaultEstimatedTime = 60 * time.Minute
)

// Metadata keys written onto tasks and performance records.
const (
	// MetaFailureReason holds the reason a task was failed.
	MetaFailureReason = "failure_reason"

	// MetaErrorType classifies a failed operation for pattern learning.
	MetaErrorType = "error_type"

	// MetaCategory records which handler category ran a task.
	MetaCategory = "category"

	// MetaAttempts records how many attempts a task needed.
	MetaAttempts = "attempts"

	// MetaRequirement holds the requirement a task was planned from.
	MetaRequirement = "requirement"

	// UnknownErrorType is used when a failure carries no error_type.
	UnknownErrorType = "unknown"
)

// Project state keys maintained by the executor.
const (
	// StateTaskProgress stores the latest aggregate progress.
	StateTaskProgress = "task_progress"

	// StateLastRun stores the outcome of the most recent run.
	StateLastRun = "last_run"

	// StateRequirement stores the requirement of the most recent plan.
	StateRequirement = "requirement"
)

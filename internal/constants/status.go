package constants

// TaskStatus represents the state of a task in the task graph.
// Status values use snake_case for JSON serialization compatibility.
type TaskStatus string

// Task status constants define the valid states a task can be in:
//
//	Pending → InProgress, Failed
//	InProgress → Completed, Failed
//
// Completed and Failed are terminal. Blocked is descriptive only; no
// transition ever produces it.
const (
	// TaskStatusPending indicates a task is planned but not yet started.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusInProgress indicates the executor is working on the task.
	TaskStatusInProgress TaskStatus = "in_progress"

	// TaskStatusCompleted indicates the task finished successfully.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusFailed indicates the task failed and will not be retried in this run.
	TaskStatusFailed TaskStatus = "failed"

	// TaskStatusBlocked describes a pending task whose dependencies are not complete.
	TaskStatusBlocked TaskStatus = "blocked"
)

// String returns the string representation of the TaskStatus.
func (s TaskStatus) String() string {
	return string(s)
}

// TaskPriority orders tasks in the ready queue and decides which failures abort a run.
type TaskPriority string

// Priority levels, lowest first.
const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// String returns the string representation of the TaskPriority.
func (p TaskPriority) String() string {
	return string(p)
}

// Rank returns the numeric weight of the priority. Unknown values rank below low.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}

// IsCritical reports whether a failure at this priority aborts the rest of a plan.
func (p TaskPriority) IsCritical() bool {
	return p == PriorityHigh || p == PriorityCritical
}

// ProgressStatus is the status carried by a progress event.
type ProgressStatus string

// Progress event statuses.
const (
	ProgressStarting   ProgressStatus = "starting"
	ProgressExecuting  ProgressStatus = "executing"
	ProgressGenerating ProgressStatus = "generating"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressFailed     ProgressStatus = "failed"
)

// String returns the string representation of the ProgressStatus.
func (s ProgressStatus) String() string {
	return string(s)
}

// OverallStatus summarizes a set of tasks.
type OverallStatus string

// Aggregate statuses reported by task progress.
const (
	OverallNotStarted OverallStatus = "not_started"
	OverallInProgress OverallStatus = "in_progress"
	OverallCompleted  OverallStatus = "completed"
	OverallHasIssues  OverallStatus = "has_issues"
)

// String returns the string representation of the OverallStatus.
func (s OverallStatus) String() string {
	return string(s)
}

package domain

import (
	"time"

	"github.com/mrz1836/forge/internal/constants"
)

// RunResult is what a plan execution returns. It is always populated, even
// when the run fails; Error is then a human-readable description and Progress
// is the partial snapshot at the time the run stopped.
type RunResult struct {
	RunID       string        `json:"run_id"`
	Requirement string        `json:"requirement,omitempty"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Outcomes    []TaskOutcome `json:"outcomes"`
	Progress    Progress      `json:"progress"`
	Summary     string        `json:"summary,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}

// Duration returns the wall time of the run.
func (r *RunResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// TaskOutcome is the per-task result of a run.
type TaskOutcome struct {
	TaskID    string               `json:"task_id"`
	Title     string               `json:"title"`
	Category  constants.Category   `json:"category,omitempty"`
	Status    constants.TaskStatus `json:"status"`
	Skipped   bool                 `json:"skipped,omitempty"`
	Attempts  int                  `json:"attempts"`
	Error     string               `json:"error,omitempty"`
	Duration  time.Duration        `json:"duration"`
	Artifacts []string             `json:"artifacts,omitempty"`
}

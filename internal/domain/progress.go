package domain

import (
	"time"

	"github.com/mrz1836/forge/internal/constants"
)

// Progress is the aggregate state of a set of tasks.
type Progress struct {
	Total              int                     `json:"total"`
	Completed          int                     `json:"completed"`
	InProgress         int                     `json:"in_progress"`
	Failed             int                     `json:"failed"`
	Pending            int                     `json:"pending"`
	ProgressPercentage float64                 `json:"progress_percentage"`
	Status             constants.OverallStatus `json:"status"`
}

// ProgressEvent is pushed to observers before and after each task and at
// sub-steps inside handlers.
type ProgressEvent struct {
	RunID              string                   `json:"run_id,omitempty"`
	TaskID             string                   `json:"task_id,omitempty"`
	CurrentTask        string                   `json:"current_task"`
	ProgressPercentage int                      `json:"progress_percentage"`
	Status             constants.ProgressStatus `json:"status"`
	Details            string                   `json:"details"`
	Timestamp          time.Time                `json:"timestamp"`
}

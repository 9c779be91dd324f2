// Package domain provides shared domain types for the forge build orchestrator.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/mrz1836/forge/internal/constants"
)

// Task represents a single planned unit of work.
//
// Example JSON representation:
//
//	{
//	    "id": "task_0003",
//	    "title": "Backend Development",
//	    "description": "Implement backend API and logic for: build a todo app",
//	    "status": "pending",
//	    "priority": "high",
//	    "dependencies": ["task_0002"],
//	    "task_type": "backend_development",
//	    "estimated_time": 3600000000000,
//	    "created_at": "2026-01-02T10:00:00Z"
//	}
type Task struct {
	// ID is the unique identifier for the task. Format: task_NNNN
	ID string `json:"id"`

	// Title names the phase and drives handler classification.
	Title string `json:"title"`

	// Description is the full instruction, including the requirement text.
	Description string `json:"description"`

	// Status is the current state in the task lifecycle.
	Status constants.TaskStatus `json:"status"`

	// Priority orders ready tasks and decides whether a failure aborts the plan.
	Priority constants.TaskPriority `json:"priority"`

	// Dependencies lists the ids that must be completed before this task may start.
	// Ids are unique; order is the order they were declared.
	Dependencies []string `json:"dependencies"`

	// TaskType is a snake_case label derived from the title.
	TaskType string `json:"task_type"`

	// EstimatedTime is the planning estimate. Zero means none was given.
	EstimatedTime time.Duration `json:"estimated_time,omitempty"`

	// ActualTime is the measured duration recorded at completion.
	ActualTime time.Duration `json:"actual_time,omitempty"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// CompletedAt is when the task reached a terminal state (nil until then).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Metadata stores arbitrary key-value data, including the failure reason.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Transitions is the audit trail of status changes.
	Transitions []Transition `json:"transitions,omitempty"`
}

// Transition records a single status change.
type Transition struct {
	FromStatus constants.TaskStatus `json:"from_status"`
	ToStatus   constants.TaskStatus `json:"to_status"`
	Timestamp  time.Time            `json:"timestamp"`
	Reason     string               `json:"reason,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate graph-owned state.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Dependencies = slices.Clone(t.Dependencies)
	c.Transitions = slices.Clone(t.Transitions)
	if t.Metadata != nil {
		c.Metadata = maps.Clone(t.Metadata)
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// FailureReason returns the recorded failure reason, if any.
func (t *Task) FailureReason() string {
	if t.Metadata == nil {
		return ""
	}
	reason, _ := t.Metadata[constants.MetaFailureReason].(string)
	return reason
}

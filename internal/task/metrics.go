package task

import (
	"time"

	"github.com/mrz1836/forge/internal/constants"
)

// Metrics collects metrics about task execution. The CLI wires a Prometheus
// implementation; everything else defaults to NoopMetrics.
type Metrics interface {
	// TaskStarted is called when a task passes its start guard.
	TaskStarted(category constants.Category)

	// TaskFinished is called when a task completes or fails.
	TaskFinished(category constants.Category, status constants.TaskStatus, duration time.Duration)

	// TaskRetried is called before every attempt after the first.
	TaskRetried(category constants.Category)

	// TaskSkipped is called when a task fails its start guard.
	TaskSkipped()

	// RunFinished is called once per Execute.
	RunFinished(success bool, duration time.Duration)
}

// NoopMetrics is a no-op implementation of Metrics for default behavior.
type NoopMetrics struct{}

var _ Metrics = (*NoopMetrics)(nil)

// TaskStarted implements Metrics.
func (NoopMetrics) TaskStarted(constants.Category) {}

// TaskFinished implements Metrics.
func (NoopMetrics) TaskFinished(constants.Category, constants.TaskStatus, time.Duration) {}

// TaskRetried implements Metrics.
func (NoopMetrics) TaskRetried(constants.Category) {}

// TaskSkipped implements Metrics.
func (NoopMetrics) TaskSkipped() {}

// RunFinished implements Metrics.
func (NoopMetrics) RunFinished(bool, time.Duration) {}

// Package metrics exports task engine metrics to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/fsutil"
	"github.com/mrz1836/forge/internal/task"
)

// Namespace prefixes every metric name.
const Namespace = "forge"

// Collector implements task.Metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	tasksStarted  *prometheus.CounterVec
	taskDuration  *prometheus.HistogramVec
	taskRetries   *prometheus.CounterVec
	tasksSkipped  prometheus.Counter
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	lastRunStatus prometheus.Gauge
}

var _ task.Metrics = (*Collector)(nil)

// New creates a collector with every metric registered.
func New() (*Collector, error) {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		tasksStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tasks_started_total",
			Help:      "Tasks that passed their start guard.",
		}, []string{"category"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "task_duration_seconds",
			Help:      "Wall time of finished tasks, retries included.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		}, []string{"category", "status"}),
		taskRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "task_retries_total",
			Help:      "Task attempts after the first.",
		}, []string{"category"}),
		tasksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tasks_skipped_total",
			Help:      "Tasks left pending because their start guard failed.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Plan executions by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of plan executions.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		lastRunStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_success",
			Help:      "1 when the most recent run succeeded, 0 otherwise.",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.tasksStarted, c.taskDuration, c.taskRetries, c.tasksSkipped,
		c.runs, c.runDuration, c.lastRunStatus,
	} {
		if err := c.registry.Register(col); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return c, nil
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// TaskStarted implements task.Metrics.
func (c *Collector) TaskStarted(category constants.Category) {
	c.tasksStarted.WithLabelValues(category.String()).Inc()
}

// TaskFinished implements task.Metrics.
func (c *Collector) TaskFinished(category constants.Category, status constants.TaskStatus, duration time.Duration) {
	c.taskDuration.WithLabelValues(category.String(), status.String()).Observe(duration.Seconds())
}

// TaskRetried implements task.Metrics.
func (c *Collector) TaskRetried(category constants.Category) {
	c.taskRetries.WithLabelValues(category.String()).Inc()
}

// TaskSkipped implements task.Metrics.
func (c *Collector) TaskSkipped() {
	c.tasksSkipped.Inc()
}

// RunFinished implements task.Metrics.
func (c *Collector) RunFinished(success bool, duration time.Duration) {
	result := "failure"
	status := 0.0
	if success {
		result = "success"
		status = 1
	}
	c.runs.WithLabelValues(result).Inc()
	c.runDuration.Observe(duration.Seconds())
	c.lastRunStatus.Set(status)
}

// ErrNoTextfile is returned by WriteTextfile when no path is configured.
var ErrNoTextfile = errors.New("metrics textfile path not configured")

// WriteTextfile writes the current metrics in the node exporter textfile
// format. The parent directory is created when missing.
func (c *Collector) WriteTextfile(path string) error {
	if path == "" {
		return ErrNoTextfile
	}
	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirPerm); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

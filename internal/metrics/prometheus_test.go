package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/constants"
)

func TestCollector_TaskMetrics(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	c.TaskStarted(constants.CategoryBackend)
	c.TaskStarted(constants.CategoryBackend)
	c.TaskRetried(constants.CategoryBackend)
	c.TaskFinished(constants.CategoryBackend, constants.TaskStatusCompleted, 2*time.Second)
	c.TaskFinished(constants.CategoryBackend, constants.TaskStatusFailed, time.Second)
	c.TaskSkipped()

	assert.InDelta(t, 2, testutil.ToFloat64(c.tasksStarted.WithLabelValues("backend")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.taskRetries.WithLabelValues("backend")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.tasksSkipped), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(c.taskDuration))
}

func TestCollector_RunFinished(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	c.RunFinished(false, time.Minute)
	assert.InDelta(t, 1, testutil.ToFloat64(c.runs.WithLabelValues("failure")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(c.lastRunStatus), 0)

	c.RunFinished(true, time.Minute)
	assert.InDelta(t, 1, testutil.ToFloat64(c.runs.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.lastRunStatus), 0)
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	b, err := New()
	require.NoError(t, err)

	a.TaskSkipped()
	assert.InDelta(t, 0, testutil.ToFloat64(b.tasksSkipped), 0)
	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestCollector_WriteTextfile(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	c.TaskStarted(constants.CategoryFrontend)

	path := filepath.Join(t.TempDir(), "nested", "forge.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path) //#nosec G304 -- test path
	require.NoError(t, err)
	assert.Contains(t, string(data), `forge_tasks_started_total{category="frontend"} 1`)

	assert.ErrorIs(t, c.WriteTextfile(""), ErrNoTextfile)
}

package task

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/constants"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

func TestPlanner_PlanIsLinearChainOfEight(t *testing.T) {
	for _, requirement := range []string{"build a todo app", "", "a very different requirement with many words"} {
		t.Run(requirement, func(t *testing.T) {
			g, _ := newTestGraph()
			ids, err := NewPlanner(g, nil, zerolog.Nop()).Plan(context.Background(), requirement)
			require.NoError(t, err)
			require.Len(t, ids, 8)

			for i, id := range ids {
				task, err := g.Get(id)
				require.NoError(t, err)
				if i == 0 {
					assert.Empty(t, task.Dependencies)
				} else {
					assert.Equal(t, []string{ids[i-1]}, task.Dependencies)
				}
				assert.Contains(t, task.Description, "for: "+requirement)
				assert.Equal(t, requirement, task.Metadata[constants.MetaRequirement])
			}
		})
	}
}

func TestPlanner_PhaseOrderAndPriorities(t *testing.T) {
	g, _ := newTestGraph()
	ids, err := NewPlanner(g, nil, zerolog.Nop()).Plan(context.Background(), "build a todo app")
	require.NoError(t, err)

	want := []struct {
		title    string
		priority constants.TaskPriority
	}{
		{"Requirements Analysis", constants.PriorityHigh},
		{"Architecture Design", constants.PriorityHigh},
		{"Database Design", constants.PriorityMedium},
		{"Backend Development", constants.PriorityHigh},
		{"Frontend Development", constants.PriorityMedium},
		{"Testing", constants.PriorityMedium},
		{"Documentation", constants.PriorityLow},
		{"Deployment", constants.PriorityHigh},
	}
	for i, w := range want {
		task, err := g.Get(ids[i])
		require.NoError(t, err)
		assert.Equal(t, w.title, task.Title)
		assert.Equal(t, w.priority, task.Priority)
		assert.Equal(t, constants.DefaultEstimatedTime, task.EstimatedTime)
	}

	backend, _ := g.Get(ids[3])
	assert.Equal(t, "backend_development", backend.TaskType)
	assert.Equal(t, "Implement backend API and logic for: build a todo app", backend.Description)
}

func TestPlanner_Canceled(t *testing.T) {
	g, _ := newTestGraph()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPlanner(g, nil, zerolog.Nop()).Plan(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, g.All())
}

func TestLoadPhases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`phases:
  - title: Backend Development
    description: Build the API
    priority: critical
    estimated_time: 90m
  - title: Testing
    description: Test it
    priority: low
`), 0o600))

	phases, err := LoadPhases(path)
	require.NoError(t, err)
	require.Len(t, phases, 2)
	assert.Equal(t, constants.PriorityCritical, phases[0].Priority)
	assert.Equal(t, 90*time.Minute, phases[0].EstimatedTime)
	assert.Equal(t, constants.DefaultEstimatedTime, phases[1].EstimatedTime)

	g, _ := newTestGraph()
	p := NewPlanner(g, phases, zerolog.Nop())
	ids, err := p.Plan(context.Background(), "api")
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Len(t, p.Phases(), 2)
}

func TestLoadPhases_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"empty", "phases: []\n", forgeerrors.ErrEmptyValue},
		{"untitled", "phases:\n  - priority: high\n", forgeerrors.ErrEmptyValue},
		{"bad priority", "phases:\n  - title: A\n    priority: urgent\n", forgeerrors.ErrValueOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "phases.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))
			_, err := LoadPhases(path)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := LoadPhases(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

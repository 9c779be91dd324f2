package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/memory"
)

func TestPlanCommand(t *testing.T) {
	t.Run("text table", func(t *testing.T) {
		te := newTestEnv(t)

		output, err := te.execute("plan", "build", "a", "todo", "app")
		require.NoError(t, err)
		assert.Contains(t, output, "DEPENDS ON")
		assert.Contains(t, output, "task_0000")
		assert.Contains(t, output, "Requirements Analysis")
		assert.Contains(t, output, "task_0007")
		assert.Contains(t, output, "Deployment")
	})

	t.Run("json", func(t *testing.T) {
		te := newTestEnv(t)

		output, err := te.execute("plan", "build a todo app", "-o", "json")
		require.NoError(t, err)

		var tasks []domain.Task
		require.NoError(t, json.Unmarshal([]byte(output), &tasks))
		require.Len(t, tasks, 8)
		assert.Empty(t, tasks[0].Dependencies)
		assert.Equal(t, []string{"task_0000"}, tasks[1].Dependencies)
		assert.Equal(t, constants.TaskStatusPending, tasks[7].Status)
		assert.Contains(t, tasks[3].Description, "build a todo app")
	})

	t.Run("requires a requirement", func(t *testing.T) {
		te := newTestEnv(t)

		_, err := te.execute("plan")
		require.Error(t, err)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	})

	t.Run("blank requirement", func(t *testing.T) {
		te := newTestEnv(t)

		_, err := te.execute("plan", "   ")
		require.ErrorIs(t, err, forgeerrors.ErrEmptyValue)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	})

	t.Run("invalid project name", func(t *testing.T) {
		te := newTestEnv(t)

		_, err := te.execute("plan", "x", "--project", "../up")
		require.ErrorIs(t, err, forgeerrors.ErrValidation)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	})
}

func TestRunCommand_Succeeds(t *testing.T) {
	te := newTestEnv(t)

	output, err := te.execute("run", "build a todo app", "--project", "todo")
	require.NoError(t, err)
	assert.Contains(t, output, "Requirements Analysis")
	assert.Contains(t, output, "All set.")
	assert.Contains(t, output, "8 of 8 tasks completed")

	data, err := os.ReadFile(filepath.Join(te.cfg.Project.OutputDir, "todo", "main.py")) //#nosec G304 -- test path
	require.NoError(t, err)
	assert.Contains(t, string(data), "print('ok')")

	output, err = te.execute("status", "--project", "todo", "-o", "json")
	require.NoError(t, err)

	var status projectStatus
	require.NoError(t, json.Unmarshal([]byte(output), &status))
	assert.Equal(t, "todo", status.Project)
	require.NotNil(t, status.Progress)
	assert.Equal(t, 8, status.Progress.Completed)
	assert.Equal(t, constants.OverallCompleted, status.Progress.Status)
	require.NotNil(t, status.LastRun)
	assert.True(t, status.LastRun.Success)
	assert.NotEmpty(t, status.LastRun.RunID)
	assert.False(t, status.LastRun.CompletedAt.Before(status.LastRun.StartedAt))

	output, err = te.execute("status", "--project", "todo")
	require.NoError(t, err)
	assert.Contains(t, output, "completed")
	assert.Contains(t, output, "8/8")
	assert.Contains(t, output, "last run succeeded")
}

func TestRunCommand_JSON(t *testing.T) {
	te := newTestEnv(t)

	output, err := te.execute("run", "build a todo app", "-o", "json")
	require.NoError(t, err)

	var res domain.RunResult
	require.NoError(t, json.Unmarshal([]byte(output), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "build a todo app", res.Requirement)
	assert.Len(t, res.Outcomes, 8)
	assert.Equal(t, "## Done\n\nAll set.", res.Summary)
}

func TestRunCommand_Failure(t *testing.T) {
	te := newTestEnv(t)
	te.generator.fail = true

	output, err := te.execute("run", "build a todo app")
	require.ErrorIs(t, err, forgeerrors.ErrBuildFailed)
	assert.Equal(t, ExitError, ExitCodeForError(err))
	assert.NotContains(t, output, "8 of 8")
}

func TestRunCommand_BlankRequirement(t *testing.T) {
	te := newTestEnv(t)

	_, err := te.execute("run", " ")
	require.ErrorIs(t, err, forgeerrors.ErrEmptyValue)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	assert.Zero(t, te.generator.prompts)
}

func TestRunCommand_MetricsFile(t *testing.T) {
	te := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "metrics", "forge.prom")

	_, err := te.execute("run", "build a todo app", "--metrics-file", path, "--quiet")
	require.NoError(t, err)

	data, err := os.ReadFile(path) //#nosec G304 -- test path
	require.NoError(t, err)
	assert.Contains(t, string(data), `forge_runs_total{result="success"} 1`)
}

func TestStatusCommand_NoRuns(t *testing.T) {
	te := newTestEnv(t)

	output, err := te.execute("status", "--project", "fresh")
	require.NoError(t, err)
	assert.Contains(t, output, "project fresh has not been run yet")

	output, err = te.execute("status", "--project", "fresh", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"project":"fresh"}`, output)
}

func TestReadStatus_InMemoryValues(t *testing.T) {
	store, err := memory.New(memory.Config{Project: "p"}, zerolog.Nop())
	require.NoError(t, err)
	store.UpdateProjectState(constants.StateTaskProgress, map[string]any{
		"total": 8.0, "completed": 3.0, "failed": 1.0, "pending": 4.0,
		"progress_percentage": 37.5, "status": "has_issues",
	})
	store.UpdateProjectState(constants.StateLastRun, map[string]any{
		"run_id": "run-1", "success": false, "error": "1 of 8 tasks failed",
		"started_at": "2026-10-16T10:00:00Z", "completed_at": "2026-10-16T10:05:00.5Z",
	})

	status, err := readStatus(store)
	require.NoError(t, err)
	require.NotNil(t, status.Progress)
	assert.Equal(t, 3, status.Progress.Completed)
	assert.InDelta(t, 37.5, status.Progress.ProgressPercentage, 0.001)
	assert.Equal(t, constants.OverallHasIssues, status.Progress.Status)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, "1 of 8 tasks failed", status.LastRun.Error)
	assert.Equal(t, 5*60+0.5, status.LastRun.CompletedAt.Sub(status.LastRun.StartedAt).Seconds())
}

func TestMemoryCommands(t *testing.T) {
	te := newTestEnv(t)

	_, err := te.execute("plan", "build a todo app", "--project", "todo")
	require.NoError(t, err)

	output, err := te.execute("memory", "summary", "--project", "todo", "-o", "json")
	require.NoError(t, err)
	var summary domain.ProjectSummary
	require.NoError(t, json.Unmarshal([]byte(output), &summary))
	assert.Equal(t, "todo", summary.Project)
	assert.Contains(t, summary.ProjectStateKeys, constants.StateRequirement)

	output, err = te.execute("memory", "summary", "--project", "todo")
	require.NoError(t, err)
	assert.Contains(t, output, "learning scenarios")

	t.Run("clear refuses without a terminal", func(t *testing.T) {
		_, err := te.execute("memory", "clear", "--project", "todo")
		require.ErrorIs(t, err, forgeerrors.ErrNonInteractiveMode)
	})

	t.Run("clear declined", func(t *testing.T) {
		te.confirm = func(string, string) (bool, error) { return false, nil }
		_, err := te.execute("memory", "clear", "--project", "todo")
		require.ErrorIs(t, err, forgeerrors.ErrOperationCanceled)
	})

	t.Run("clear forced", func(t *testing.T) {
		output, err := te.execute("memory", "clear", "--project", "todo", "--force")
		require.NoError(t, err)
		assert.Contains(t, output, "memory of project todo cleared")

		output, err = te.execute("memory", "summary", "--project", "todo", "-o", "json")
		require.NoError(t, err)
		var cleared domain.ProjectSummary
		require.NoError(t, json.Unmarshal([]byte(output), &cleared))
		assert.Empty(t, cleared.ProjectStateKeys)
		assert.Zero(t, cleared.ConversationEntries)
	})
}

func TestMemoryInsightsCommand(t *testing.T) {
	te := newTestEnv(t)

	output, err := te.execute("memory", "insights")
	require.NoError(t, err)
	assert.Contains(t, output, "has no learnings yet")

	store, err := memory.Open(context.Background(), memory.Config{
		Project: constants.DefaultProjectName,
		Dir:     te.cfg.Memory.Dir,
	}, zerolog.Nop())
	require.NoError(t, err)
	store.AddLearning("debug:main.py", "print('a')", false)
	store.AddLearning("debug:main.py", "print('b')", true)
	store.AddLearning("test:models.py", "class A: pass", true)
	require.NoError(t, store.Save(context.Background()))

	output, err = te.execute("memory", "insights", "-o", "json")
	require.NoError(t, err)

	var insights memoryInsights
	require.NoError(t, json.Unmarshal([]byte(output), &insights))
	require.Len(t, insights.Scenarios, 2)
	assert.Equal(t, scenarioInsight{
		Scenario:     "debug:main.py",
		Attempts:     2,
		Successes:    1,
		LastSolution: "print('b')",
		LastSuccess:  true,
	}, insights.Scenarios[0])
	assert.Equal(t, "test:models.py", insights.Scenarios[1].Scenario)

	output, err = te.execute("memory", "insights")
	require.NoError(t, err)
	assert.Contains(t, output, "debug:main.py")
	assert.Contains(t, output, "1/2")
}

func TestFixCommand(t *testing.T) {
	te := newTestEnv(t)
	dir := filepath.Join(te.cfg.Project.OutputDir, constants.DefaultProjectName)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("print(app\n"), 0o600))

	output, err := te.execute("fix", "main.py", "SyntaxError:", "unexpected", "EOF")
	require.NoError(t, err)
	assert.Contains(t, output, "main.py fixed")

	data, err := os.ReadFile(filepath.Join(dir, "main.py")) //#nosec G304 -- test path
	require.NoError(t, err)
	assert.Equal(t, "print('fixed')\n", string(data))

	t.Run("missing file", func(t *testing.T) {
		_, err := te.execute("fix", "absent.py", "boom")
		require.ErrorIs(t, err, forgeerrors.ErrFileNotFound)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	})

	t.Run("needs an error message", func(t *testing.T) {
		_, err := te.execute("fix", "main.py")
		require.Error(t, err)
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	})
}

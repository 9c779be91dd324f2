package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	"github.com/mrz1836/forge/internal/memory"
	"github.com/mrz1836/forge/internal/workspace"
)

// lastRun is the shape of the last_run project state entry.
type lastRun struct {
	RunID       string    `json:"run_id"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// projectStatus is what the status command reports.
type projectStatus struct {
	Project  string           `json:"project"`
	Progress *domain.Progress `json:"task_progress,omitempty"`
	LastRun  *lastRun         `json:"last_run,omitempty"`
}

func addStatusCommand(parent *cobra.Command, env *commandEnv) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the progress and outcome of the last run",
		Long: `Read the project memory and show the task progress and the outcome of the
most recent run.

Examples:
  forge status
  forge status --project todo --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), env, cmd.OutOrStdout())
		},
	}
	parent.AddCommand(cmd)
}

// openStore loads the selected project's memory without starting a service.
func openStore(ctx context.Context, env *commandEnv) (*memory.Store, error) {
	cfg, err := env.config(ctx)
	if err != nil {
		return nil, err
	}
	if err = workspace.ValidateName(cfg.Project.Name); err != nil {
		return nil, asInputError(err)
	}
	dir, err := cfg.MemoryDir()
	if err != nil {
		return nil, err
	}
	return memory.Open(ctx, memory.Config{
		Project:        cfg.Project.Name,
		Dir:            dir,
		TokenCacheSize: cfg.Memory.TokenCacheSize,
	}, GetLogger())
}

func runStatus(ctx context.Context, env *commandEnv, w io.Writer) error {
	store, err := openStore(ctx, env)
	if err != nil {
		return err
	}

	status, err := readStatus(store)
	if err != nil {
		return err
	}

	out := env.output(w)
	if env.flags.Output == OutputJSON {
		return out.JSON(status)
	}

	if status.Progress == nil && status.LastRun == nil {
		out.Info(fmt.Sprintf("project %s has not been run yet", status.Project))
		return nil
	}

	rows := [][]string{{"project", status.Project}}
	if p := status.Progress; p != nil {
		rows = append(rows,
			[]string{"status", p.Status.String()},
			[]string{"progress", fmt.Sprintf("%.1f%%", p.ProgressPercentage)},
			[]string{"completed", fmt.Sprintf("%d/%d", p.Completed, p.Total)},
			[]string{"failed", strconv.Itoa(p.Failed)},
			[]string{"pending", strconv.Itoa(p.Pending)},
		)
	}
	if r := status.LastRun; r != nil {
		rows = append(rows,
			[]string{"last run", r.RunID},
			[]string{"finished", r.CompletedAt.Local().Format(time.DateTime)},
			[]string{"duration", r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String()},
		)
	}
	out.Table([]string{"FIELD", "VALUE"}, rows)

	if r := status.LastRun; r != nil {
		if r.Success {
			out.Success("last run succeeded")
		} else {
			out.Warning("last run failed: " + r.Error)
		}
	}
	return nil
}

// readStatus decodes the executor's project state entries. Loaded snapshots
// hold them as generic JSON values.
func readStatus(store *memory.Store) (*projectStatus, error) {
	status := &projectStatus{Project: store.Project()}

	if entry, ok := store.ProjectState(constants.StateTaskProgress); ok {
		var p domain.Progress
		if err := decodeState(entry.Value, &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", constants.StateTaskProgress, err)
		}
		status.Progress = &p
	}
	if entry, ok := store.ProjectState(constants.StateLastRun); ok {
		var r lastRun
		if err := decodeState(entry.Value, &r); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", constants.StateLastRun, err)
		}
		status.LastRun = &r
	}
	return status, nil
}

// decodeState decodes a project-state value into out. The value is first
// normalized to its JSON form so live structs and loaded snapshots decode
// the same way.
func decodeState(value, out any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var normalized map[string]any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		Result:     out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(normalized)
}

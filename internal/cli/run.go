package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/signal"
	"github.com/mrz1836/forge/internal/tui"
)

func addRunCommand(parent *cobra.Command, env *commandEnv) {
	cmd := &cobra.Command{
		Use:   "run <requirement>",
		Short: "Plan and build a project from a requirement",
		Long: `Plan a requirement, execute every task in order, and summarize the result.

Progress is streamed as tasks start and finish. Generated files are written
to <project.output_dir>/<project.name>. The project memory is saved when the
command exits, including on Ctrl+C.

Examples:
  forge run "build a todo app"
  forge run "build a todo app" --project todo --metrics-file /tmp/forge.prom
  forge run "build a todo app" --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), env, cmd.OutOrStdout(), joinArgs(args))
		},
	}
	cmd.Flags().StringVar(&env.flags.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
	parent.AddCommand(cmd)
}

func runBuild(ctx context.Context, env *commandEnv, w io.Writer, requirement string) (err error) {
	if requirement == "" {
		return forgeerrors.NewExitCode2Error(
			fmt.Errorf("requirement: %w: %w", forgeerrors.ErrValidation, forgeerrors.ErrEmptyValue))
	}

	handler := signal.NewHandler(ctx, GetLogger())
	defer func() {
		if stopErr := handler.Stop(ctx); err == nil {
			err = stopErr
		}
	}()

	svc, err := openService(handler.Context(), env)
	if err != nil {
		return err
	}
	handler.OnShutdown(svc.Shutdown)

	out := env.output(w)
	width := terminalWidth(w)
	if env.flags.Output != OutputJSON && !env.flags.Quiet {
		svc.Subscribe(tui.NewProgressPrinter(w, width).Observe)
	}

	res := svc.Build(handler.Context(), requirement)

	if env.flags.Output == OutputJSON {
		if err = out.JSON(res); err != nil {
			return err
		}
	} else {
		renderRunResult(w, out, res, width)
	}

	if handler.Received() != nil {
		return &interruptedError{code: handler.ExitCode(), err: context.Canceled}
	}
	if !res.Success {
		return fmt.Errorf("%w: %s", forgeerrors.ErrBuildFailed, res.Error)
	}
	return nil
}

func renderRunResult(w io.Writer, out tui.Output, res *domain.RunResult, width int) {
	if res.Summary != "" {
		_, _ = fmt.Fprintln(w, tui.RenderMarkdown(res.Summary, width))
	}

	if len(res.Outcomes) > 0 {
		rows := make([][]string, 0, len(res.Outcomes))
		for _, o := range res.Outcomes {
			status := tui.TaskStatusIcon(o.Status) + " " + o.Status.String()
			if o.Skipped {
				status = "- skipped"
			}
			rows = append(rows, []string{
				o.TaskID,
				o.Title,
				status,
				strconv.Itoa(o.Attempts),
				o.Duration.Round(time.Millisecond).String(),
			})
		}
		out.Table([]string{"TASK", "TITLE", "STATUS", "ATTEMPTS", "DURATION"}, rows)
	}

	p := res.Progress
	msg := fmt.Sprintf("%d of %d tasks completed in %s", p.Completed, p.Total, res.Duration().Round(time.Millisecond))
	if res.Success {
		out.Success(msg)
		return
	}
	out.Warning(msg)
}

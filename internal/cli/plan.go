package cli

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func addPlanCommand(parent *cobra.Command, env *commandEnv) {
	cmd := &cobra.Command{
		Use:   "plan <requirement>",
		Short: "Show the tasks a requirement is broken into",
		Long: `Plan a requirement without executing it.

The requirement becomes one task per phase, each depending on the one
before it. The phases come from planner.template_file when configured.

Examples:
  forge plan "build a todo app"
  forge plan "build a todo app" --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), env, cmd.OutOrStdout(), joinArgs(args))
		},
	}
	parent.AddCommand(cmd)
}

func runPlan(ctx context.Context, env *commandEnv, w io.Writer, requirement string) (err error) {
	svc, err := openService(ctx, env)
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := svc.Shutdown(context.WithoutCancel(ctx)); err == nil {
			err = shutdownErr
		}
	}()

	if _, err = svc.Plan(ctx, requirement); err != nil {
		return asInputError(err)
	}

	out := env.output(w)
	tasks := svc.Tasks()
	if env.flags.Output == OutputJSON {
		return out.JSON(tasks)
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		deps := "-"
		if len(t.Dependencies) > 0 {
			deps = strings.Join(t.Dependencies, ",")
		}
		rows = append(rows, []string{t.ID, t.Title, t.Priority.String(), deps})
	}
	out.Table([]string{"ID", "TITLE", "PRIORITY", "DEPENDS ON"}, rows)
	return nil
}

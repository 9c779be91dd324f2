package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func addFixCommand(parent *cobra.Command, env *commandEnv) {
	cmd := &cobra.Command{
		Use:   "fix <path> <error message>",
		Short: "Ask for a corrected version of a generated file",
		Long: `Send a generated file and an error message to the generation command and
write the corrected file back when it passes the structural checks. The
path is relative to the project directory.

Examples:
  forge fix main.py "NameError: name 'app' is not defined" --project todo`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd.Context(), env, cmd.OutOrStdout(), args[0], joinArgs(args[1:]))
		},
	}
	parent.AddCommand(cmd)
}

func runFix(ctx context.Context, env *commandEnv, w io.Writer, path, errorMessage string) (err error) {
	svc, err := openService(ctx, env)
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := svc.Shutdown(context.WithoutCancel(ctx)); err == nil {
			err = shutdownErr
		}
	}()

	res, err := svc.DebugAndFix(ctx, path, errorMessage)
	if err != nil {
		return asInputError(err)
	}

	out := env.output(w)
	if env.flags.Output == OutputJSON {
		return out.JSON(res)
	}
	if res.Fixed {
		out.Success(fmt.Sprintf("%s fixed", res.Path))
		return nil
	}
	out.Warning(fmt.Sprintf("%s was not changed", res.Path))
	for _, d := range res.Diagnostics {
		out.Info("  " + d)
	}
	return nil
}

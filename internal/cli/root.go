// Package cli provides the command-line interface for forge.
package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/tui"
	"github.com/mrz1836/forge/internal/workflow"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// It is set during PersistentPreRunE and should be accessed via GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// It MUST only be called after the root command's PersistentPreRunE has
// executed; before that it returns a zero-value logger.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// commandEnv carries what the subcommands need. Tests replace the config
// loader and pass service options to swap in fake capabilities.
type commandEnv struct {
	flags          *GlobalFlags
	loadConfig     func(ctx context.Context, overrides *config.Config) (*config.Config, error)
	initLogger     func(verbose, quiet bool) zerolog.Logger
	confirm        func(title, description string) (bool, error)
	serviceOptions []workflow.Option
}

func defaultEnv(flags *GlobalFlags) *commandEnv {
	return &commandEnv{
		flags:      flags,
		loadConfig: config.LoadWithOverrides,
		initLogger: InitLogger,
		confirm:    tui.Confirm,
	}
}

// config loads the layered configuration with the command-line overrides applied.
func (env *commandEnv) config(ctx context.Context) (*config.Config, error) {
	return env.loadConfig(ctx, &config.Config{
		Project: config.ProjectConfig{Name: env.flags.Project},
		Metrics: config.MetricsConfig{Textfile: env.flags.MetricsFile},
	})
}

// output returns the formatter selected by --output.
func (env *commandEnv) output(w io.Writer) tui.Output {
	return tui.NewOutput(w, env.flags.Output)
}

// newRootCmd creates and returns the root command for the forge CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	return newRootCmdWithEnv(defaultEnv(flags), info)
}

func newRootCmdWithEnv(env *commandEnv, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "forge",
		Short: "forge - requirement-driven project generation",
		Long: `forge turns a plain-language requirement into a planned set of development
tasks and executes them in order, keeping a per-project memory of what was
generated, what failed, and what was learned.

Features:
  • Eight-phase planning from a single requirement
  • Retried task execution with a fix pass for failing tests
  • Persistent project memory and learning insights
  • Streamed progress and a markdown build summary`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			if err := tui.ValidateFormat(env.flags.Output); err != nil {
				return err
			}

			globalLoggerMu.Lock()
			globalLogger = env.initLogger(env.flags.Verbose, env.flags.Quiet)
			globalLoggerMu.Unlock()
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, env.flags)

	addPlanCommand(cmd, env)
	addRunCommand(cmd, env)
	addStatusCommand(cmd, env)
	addMemoryCommand(cmd, env)
	addFixCommand(cmd, env)
	addVersionCommand(cmd, info)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command and reports a failing command on stderr in
// the selected output format. The returned error decides the exit code.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, info)
	defer CloseLogFile()

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		format := flags.Output
		if tui.ValidateFormat(format) != nil {
			format = tui.FormatText
		}
		tui.NewOutput(cmd.ErrOrStderr(), format).Error(err)
	}
	return err
}

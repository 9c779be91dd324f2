package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/ctxutil"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// CommandDeployer runs the configured deploy command inside the project
// directory. Without a command it only verifies that the directory holds
// files, which is enough to hand the project off by hand.
type CommandDeployer struct {
	cfg      *config.DeployConfig
	executor CommandExecutor
	logger   zerolog.Logger
}

// NewCommandDeployer creates a deployer. If executor is nil, a
// DefaultExecutor is used.
func NewCommandDeployer(cfg *config.DeployConfig, executor CommandExecutor, logger zerolog.Logger) *CommandDeployer {
	if executor == nil {
		executor = &DefaultExecutor{}
	}
	if cfg == nil {
		cfg = &config.DeployConfig{}
	}
	return &CommandDeployer{cfg: cfg, executor: executor, logger: logger}
}

// Deploy implements Deployer.
func (d *CommandDeployer) Deploy(ctx context.Context, projectDir string) (*domain.DeployResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return &domain.DeployResult{Diagnostics: []string{fmt.Sprintf("project directory unreadable: %v", err)}}, nil
	}
	if len(entries) == 0 {
		return &domain.DeployResult{Diagnostics: []string{"project directory is empty"}}, nil
	}

	if d.cfg.Command == "" {
		return &domain.DeployResult{
			Success:     true,
			Diagnostics: []string{fmt.Sprintf("no deploy command configured; %d entries ready in %s", len(entries), projectDir)},
		}, nil
	}

	timeout := d.cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultDeployTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//#nosec G204 -- command comes from user configuration
	cmd := exec.CommandContext(runCtx, d.cfg.Command, d.cfg.Args...)
	cmd.Dir = projectDir

	start := time.Now()
	stdout, stderr, err := d.executor.Execute(runCtx, cmd)
	d.logger.Debug().
		Str("command", d.cfg.Command).
		Str("project_dir", projectDir).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Err(err).
		Msg("deploy command finished")

	if err == nil {
		return &domain.DeployResult{Success: true, Diagnostics: lines(stdout)}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		diag := append([]string{fmt.Sprintf("deploy command exited with code %d", exitErr.ExitCode())}, lines(stderr)...)
		return &domain.DeployResult{Diagnostics: diag}, nil
	}

	return nil, WrapExecutionError(CommandInfo{
		Name:        d.cfg.Command,
		InstallHint: "install it or clear deploy.command",
		ErrType:     forgeerrors.ErrDeploymentFailed,
	}, err, stderr)
}

func lines(b []byte) []string {
	text := strings.TrimSpace(string(b))
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

var _ Deployer = (*CommandDeployer)(nil)

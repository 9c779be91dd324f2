package ai

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/ctxutil"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/logging"
)

// CommandGenerator runs a configured command, writes the prompt to its
// stdin, and returns its stdout as the generated text.
type CommandGenerator struct {
	cfg      *config.AIConfig
	executor CommandExecutor
	logger   zerolog.Logger
}

// NewCommandGenerator creates a generator. If executor is nil, a
// DefaultExecutor is used.
func NewCommandGenerator(cfg *config.AIConfig, executor CommandExecutor, logger zerolog.Logger) *CommandGenerator {
	if executor == nil {
		executor = &DefaultExecutor{}
	}
	return &CommandGenerator{cfg: cfg, executor: executor, logger: logger}
}

func (g *CommandGenerator) timeout() time.Duration {
	if g.cfg != nil && g.cfg.Timeout > 0 {
		return g.cfg.Timeout
	}
	return constants.DefaultGenerationTimeout
}

// Generate implements Generator.
func (g *CommandGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}
	if g.cfg == nil || g.cfg.Command == "" {
		return "", fmt.Errorf("ai.command: %w", forgeerrors.ErrCommandNotConfigured)
	}

	runCtx, cancel := context.WithTimeout(ctx, g.timeout())
	defer cancel()

	//#nosec G204 -- command comes from user configuration
	cmd := exec.CommandContext(runCtx, g.cfg.Command, g.cfg.Args...)
	cmd.Stdin = strings.NewReader(prompt)

	start := time.Now()
	stdout, stderr, err := g.executor.Execute(runCtx, cmd)
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if runCtx.Err() != nil {
			return "", fmt.Errorf("%w: timed out after %s: %w", forgeerrors.ErrGenerationFailed, g.timeout(), runCtx.Err())
		}
		return "", WrapExecutionError(CommandInfo{
			Name:        g.cfg.Command,
			InstallHint: "install it or point ai.command at an available generator",
			ErrType:     forgeerrors.ErrGenerationFailed,
		}, err, stderr)
	}

	text := strings.TrimSpace(string(stdout))
	g.logger.Debug().
		Str("command", g.cfg.Command).
		Int("prompt_bytes", len(prompt)).
		Int("response_bytes", len(text)).
		Str("prompt", logging.Preview(prompt, promptPreviewWidth)).
		Int64("duration_ms", elapsed.Milliseconds()).
		Msg("generation finished")

	if text == "" {
		return "", fmt.Errorf("%w: %w", forgeerrors.ErrGenerationFailed, forgeerrors.ErrEmptyGeneration)
	}
	return text, nil
}

// promptPreviewWidth bounds the prompt excerpt in debug logs.
const promptPreviewWidth = 120

var _ Generator = (*CommandGenerator)(nil)

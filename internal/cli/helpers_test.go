package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/ai"
	"github.com/mrz1836/forge/internal/config"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/testutil"
	"github.com/mrz1836/forge/internal/workflow"
)

const summaryMarker = "Write a short markdown summary"

// scriptedGenerator answers every prompt with a small valid artifact.
type scriptedGenerator struct {
	mu      sync.Mutex
	fail    bool
	prompts int
}

func (g *scriptedGenerator) generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts++

	switch {
	case g.fail:
		return "", testutil.ErrMockGeneration
	case strings.Contains(prompt, summaryMarker):
		return "## Done\n\nAll set.", nil
	case strings.Contains(prompt, "has these problems"):
		return "print('fixed')", nil
	default:
		return "print('ok')", nil
	}
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// testEnv wires the commands to temporary directories and a scripted generator.
type testEnv struct {
	*commandEnv
	cfg       *config.Config
	generator *scriptedGenerator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	cfg := config.DefaultConfig()
	cfg.Project.OutputDir = t.TempDir()
	cfg.Memory.Dir = t.TempDir()

	gen := &scriptedGenerator{}
	te := &testEnv{cfg: cfg, generator: gen}
	te.commandEnv = &commandEnv{
		flags: &GlobalFlags{},
		loadConfig: func(_ context.Context, overrides *config.Config) (*config.Config, error) {
			c := *cfg
			if overrides.Project.Name != "" {
				c.Project.Name = overrides.Project.Name
			}
			if overrides.Metrics.Textfile != "" {
				c.Metrics.Textfile = overrides.Metrics.Textfile
			}
			return &c, nil
		},
		initLogger: func(bool, bool) zerolog.Logger { return zerolog.Nop() },
		confirm: func(string, string) (bool, error) {
			return false, forgeerrors.ErrNonInteractiveMode
		},
		serviceOptions: []workflow.Option{
			workflow.WithGenerator(ai.GeneratorFunc(gen.generate)),
			workflow.WithSleep(noSleep),
		},
	}
	return te
}

// execute runs the root command with args and returns everything it printed.
func (te *testEnv) execute(args ...string) (string, error) {
	cmd := newRootCmdWithEnv(te.commandEnv, BuildInfo{Version: "test"})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

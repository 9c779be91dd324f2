package handler

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	"github.com/mrz1836/forge/internal/memory"
	"github.com/mrz1836/forge/internal/workspace"
)

// fakeGenerator answers prompts in order and records them.
type fakeGenerator struct {
	mu      sync.Mutex
	answers []string
	errs    []error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.answers) {
		return g.answers[i], nil
	}
	return "", nil
}

// fakeTester fails content containing "BROKEN".
type fakeTester struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeTester) Test(_ context.Context, content, path string) (*domain.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if strings.Contains(content, "BROKEN") {
		return &domain.TestResult{Diagnostics: []string{"line 1: BROKEN marker"}}, nil
	}
	return &domain.TestResult{Success: true}, nil
}

type fakeDeployer struct {
	result *domain.DeployResult
	err    error
	dirs   []string
}

func (f *fakeDeployer) Deploy(_ context.Context, dir string) (*domain.DeployResult, error) {
	f.dirs = append(f.dirs, dir)
	return f.result, f.err
}

type fixture struct {
	deps     *Deps
	gen      *fakeGenerator
	tester   *fakeTester
	deployer *fakeDeployer
	store    *memory.Store
	files    *workspace.Dir
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := memory.New(memory.Config{Project: "todo"}, zerolog.Nop())
	require.NoError(t, err)
	files, err := workspace.New(filepath.Join(t.TempDir(), "todo"))
	require.NoError(t, err)

	f := &fixture{
		gen:      &fakeGenerator{},
		tester:   &fakeTester{},
		deployer: &fakeDeployer{result: &domain.DeployResult{Success: true, Diagnostics: []string{"ok"}}},
		store:    store,
		files:    files,
	}
	f.deps = &Deps{
		Generator:      f.gen,
		Tester:         f.tester,
		Deployer:       f.deployer,
		Files:          files,
		Memory:         store,
		Artifacts:      config.DefaultArtifacts(),
		ContextEntries: 5,
		Logger:         zerolog.Nop(),
	}
	return f
}

type event struct {
	status  constants.ProgressStatus
	details string
}

func request(title string, events *[]event) *Request {
	return &Request{
		Task:    &domain.Task{ID: "task_0003", Title: title, Description: title + " for: build a todo app"},
		Attempt: 1,
		Emit: func(status constants.ProgressStatus, details string) {
			if events != nil {
				*events = append(*events, event{status, details})
			}
		},
	}
}

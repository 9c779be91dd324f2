// Package workflow wires configuration, the context store, the generation
// capabilities, and the task engine into the entry points the CLI calls.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/forge/internal/ai"
	"github.com/mrz1836/forge/internal/clock"
	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/handler"
	"github.com/mrz1836/forge/internal/memory"
	"github.com/mrz1836/forge/internal/metrics"
	"github.com/mrz1836/forge/internal/retry"
	"github.com/mrz1836/forge/internal/task"
	"github.com/mrz1836/forge/internal/workspace"
)

// Service is one project's session: a task graph, its context store, and
// the engine that executes plans against them.
type Service struct {
	cfg       *config.Config
	store     *memory.Store
	files     workspace.FS
	generator ai.Generator
	tester    ai.Tester
	graph     *task.Graph
	planner   *task.Planner
	engine    *task.Engine
	metrics   *metrics.Collector
	sleep     retry.SleepFunc
	clock     clock.Clock
	logger    zerolog.Logger

	shutdownOnce sync.Once
	shutdownErr  error
}

// Option overrides a collaborator of the Service.
type Option func(*options)

type options struct {
	generator ai.Generator
	tester    ai.Tester
	deployer  ai.Deployer
	files     workspace.FS
	metrics   *metrics.Collector
	sleep     retry.SleepFunc
	clock     clock.Clock
}

// WithGenerator replaces the command-backed generation capability.
func WithGenerator(g ai.Generator) Option {
	return func(o *options) { o.generator = g }
}

// WithTester replaces the structural tester.
func WithTester(t ai.Tester) Option {
	return func(o *options) { o.tester = t }
}

// WithDeployer replaces the command deployer.
func WithDeployer(d ai.Deployer) Option {
	return func(o *options) { o.deployer = d }
}

// WithFileSystem replaces the project directory.
func WithFileSystem(fs workspace.FS) Option {
	return func(o *options) { o.files = fs }
}

// WithMetrics installs a metrics collector. Without it a collector is
// created only when a metrics textfile is configured.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// WithSleep replaces the backoff wait of both retry layers.
func WithSleep(sleep retry.SleepFunc) Option {
	return func(o *options) { o.sleep = sleep }
}

// WithClock sets the time source for tasks and memory records.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// New validates cfg, opens the project's context store, and builds the
// engine. The caller must call Shutdown on every exit path.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...Option) (*Service, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if err := workspace.ValidateName(cfg.Project.Name); err != nil {
		return nil, err
	}

	o := options{clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	logger = logger.With().Str("project", cfg.Project.Name).Logger()

	memDir, err := cfg.MemoryDir()
	if err != nil {
		return nil, err
	}
	store, err := memory.Open(ctx, memory.Config{
		Project:        cfg.Project.Name,
		Dir:            memDir,
		TokenCacheSize: cfg.Memory.TokenCacheSize,
	}, logger, memory.WithClock(o.clock))
	if err != nil {
		return nil, err
	}

	if o.files == nil {
		dir, dirErr := workspace.New(cfg.ProjectDir())
		if dirErr != nil {
			return nil, dirErr
		}
		o.files = dir
	}
	if o.generator == nil {
		o.generator = ai.NewRateLimitedGenerator(
			ai.NewCommandGenerator(&cfg.AI, &ai.DefaultExecutor{}, logger),
			cfg.AI.RequestsPerMinute, cfg.AI.Burst)
	}
	if o.tester == nil {
		o.tester = ai.NewStructuralTester(logger)
	}
	if o.deployer == nil {
		o.deployer = ai.NewCommandDeployer(&cfg.Deploy, &ai.DefaultExecutor{}, logger)
	}
	if o.metrics == nil && cfg.Metrics.Textfile != "" {
		if o.metrics, err = metrics.New(); err != nil {
			return nil, err
		}
	}

	registry, err := handler.NewDefaultRegistry(&handler.Deps{
		Generator:      o.generator,
		Tester:         o.tester,
		Deployer:       o.deployer,
		Files:          o.files,
		Memory:         store,
		Artifacts:      cfg.Artifacts,
		ContextEntries: cfg.Memory.ContextEntries,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	var phases []task.Phase
	if cfg.Planner.TemplateFile != "" {
		if phases, err = task.LoadPhases(cfg.Planner.TemplateFile); err != nil {
			return nil, err
		}
	}

	graph := task.NewGraph(logger, task.WithClock(o.clock))
	engineOpts := []task.EngineOption{task.WithEngineClock(o.clock), task.WithSleep(o.sleep)}
	if o.metrics != nil {
		engineOpts = append(engineOpts, task.WithMetrics(o.metrics))
	}

	s := &Service{
		cfg:       cfg,
		store:     store,
		files:     o.files,
		generator: o.generator,
		tester:    o.tester,
		graph:     graph,
		planner:   task.NewPlanner(graph, phases, logger),
		engine: task.NewEngine(graph, registry, store, task.EngineConfig{
			TaskRetry: cfg.Retry.Task,
			Autosave:  cfg.Memory.Autosave,
		}, logger, engineOpts...),
		metrics: o.metrics,
		sleep:   o.sleep,
		clock:   o.clock,
		logger:  logger,
	}

	logger.Debug().
		Str("memory_dir", memDir).
		Str("project_dir", o.files.Root()).
		Int("phases", len(s.planner.Phases())).
		Msg("workflow service ready")
	return s, nil
}

// Plan records the requirement and turns it into an ordered list of task ids.
func (s *Service) Plan(ctx context.Context, requirement string) ([]string, error) {
	requirement = strings.TrimSpace(requirement)
	if requirement == "" {
		return nil, fmt.Errorf("requirement: %w: %w", forgeerrors.ErrValidation, forgeerrors.ErrEmptyValue)
	}
	ids, err := s.planner.Plan(ctx, requirement)
	if err != nil {
		return nil, err
	}
	s.store.UpdateProjectState(constants.StateRequirement, requirement)
	return ids, nil
}

// Execute runs a plan. It never returns an error; see task.Engine.Execute.
func (s *Service) Execute(ctx context.Context, plan []string) *domain.RunResult {
	return s.engine.Execute(ctx, plan)
}

// Progress aggregates every task in the session.
func (s *Service) Progress() domain.Progress {
	return s.graph.Progress()
}

// Tasks returns copies of every task in creation order.
func (s *Service) Tasks() []*domain.Task {
	return s.graph.All()
}

// Subscribe registers a progress observer.
func (s *Service) Subscribe(o task.Observer) {
	s.engine.Subscribe(o)
}

// Store returns the project's context store.
func (s *Service) Store() *memory.Store {
	return s.store
}

// Shutdown flushes the context store and, when configured, the metrics
// textfile. Only the first call does any work; later calls return its error.
func (s *Service) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.store.Save(gctx)
		})
		if s.metrics != nil && s.cfg.Metrics.Textfile != "" {
			g.Go(func() error {
				return s.metrics.WriteTextfile(s.cfg.Metrics.Textfile)
			})
		}
		s.shutdownErr = g.Wait()
		if s.shutdownErr != nil {
			s.logger.Warn().Err(s.shutdownErr).Msg("shutdown flush failed")
			return
		}
		s.logger.Debug().Msg("workflow service shut down")
	})
	return s.shutdownErr
}

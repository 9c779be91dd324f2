package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/clock"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/handler"
	"github.com/mrz1836/forge/internal/retry"
)

// HandlerSource resolves a task to the handler that executes it.
type HandlerSource interface {
	Resolve(t *domain.Task) (handler.Handler, error)
}

// Recorder is the part of the context store the engine writes run history to.
type Recorder interface {
	RecordPerformance(operation string, duration time.Duration, success bool, metadata map[string]any)
	UpdateProjectState(key string, value any)
	Save(ctx context.Context) error
}

// EngineConfig holds configuration for the Engine.
type EngineConfig struct {
	// TaskRetry is the policy wrapped around every task execution.
	TaskRetry retry.Policy

	// Autosave writes the context store after every task.
	Autosave bool
}

// DefaultEngineConfig returns the built-in defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TaskRetry: retry.TaskPolicy(),
		Autosave:  true,
	}
}

// Engine executes plans one task at a time. Side effects of a task are
// committed before the next task starts.
type Engine struct {
	graph    *Graph
	handlers HandlerSource
	recorder Recorder
	config   EngineConfig
	notifier *ProgressNotifier
	metrics  Metrics
	clock    clock.Clock
	sleep    retry.SleepFunc
	logger   zerolog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithEngineClock sets the time source used for durations and events.
func WithEngineClock(c clock.Clock) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithSleep replaces the backoff wait between task attempts.
func WithSleep(sleep retry.SleepFunc) EngineOption {
	return func(e *Engine) {
		e.sleep = sleep
	}
}

// NewEngine creates an engine over graph. recorder may be nil.
func NewEngine(graph *Graph, handlers HandlerSource, recorder Recorder, cfg EngineConfig, logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:    graph,
		handlers: handlers,
		recorder: recorder,
		config:   cfg,
		notifier: NewProgressNotifier(logger),
		metrics:  NoopMetrics{},
		clock:    clock.RealClock{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers a progress observer.
func (e *Engine) Subscribe(o Observer) {
	e.notifier.Register(o)
}

// Execute runs the plan in order and never returns an error: the outcome,
// including a readable error on failure, is in the result.
//
// A task whose start guard fails is skipped and stays pending. A failed task
// of high or critical priority stops the run. The run succeeds when no task
// of the plan failed and at least one completed.
func (e *Engine) Execute(ctx context.Context, plan []string) *domain.RunResult {
	runID := uuid.NewString()
	logger := e.logger.With().Str("run_id", runID).Logger()
	result := &domain.RunResult{RunID: runID, StartedAt: e.clock.Now().UTC()}

	logger.Info().Int("tasks", len(plan)).Msg("run started")

	var abort error
	for i, id := range plan {
		if err := ctx.Err(); err != nil {
			abort = fmt.Errorf("run canceled before %s: %w", id, err)
			break
		}

		outcome, t, taskErr := e.runTask(ctx, logger, runID, i, len(plan), id)
		result.Outcomes = append(result.Outcomes, outcome)
		e.autosave(ctx, logger)

		if taskErr == nil || outcome.Skipped {
			continue
		}
		if err := ctx.Err(); err != nil {
			abort = fmt.Errorf("run canceled during %s: %w", id, err)
			break
		}
		if t != nil && t.Priority.IsCritical() {
			abort = forgeerrors.Join(forgeerrors.ErrCriticalTaskFailed, taskErr,
				fmt.Sprintf("%s (%s, %s priority)", t.Title, id, t.Priority))
			logger.Warn().Str("task_id", id).Msg("critical task failed, stopping run")
			break
		}
	}

	result.Progress = e.graph.ProgressFor(plan)
	result.Success = abort == nil && result.Progress.Failed == 0 && result.Progress.Completed > 0
	switch {
	case abort != nil:
		result.Error = abort.Error()
	case result.Progress.Failed > 0:
		result.Error = fmt.Sprintf("%d of %d tasks failed", result.Progress.Failed, result.Progress.Total)
	case result.Progress.Completed == 0:
		result.Error = forgeerrors.ErrNoTasksCompleted.Error()
	}
	result.CompletedAt = e.clock.Now().UTC()

	e.recordRun(ctx, logger, result)
	e.metrics.RunFinished(result.Success, result.Duration())

	logger.Info().
		Bool("success", result.Success).
		Int("completed", result.Progress.Completed).
		Int("failed", result.Progress.Failed).
		Dur("duration", result.Duration()).
		Str("error", result.Error).
		Msg("run finished")

	return result
}

// runTask executes one task. It returns the outcome, the task snapshot taken
// before execution (nil when the id is unknown), and the error that made the
// task fail or be skipped.
func (e *Engine) runTask(ctx context.Context, runLogger zerolog.Logger, runID string, index, total int, id string) (domain.TaskOutcome, *domain.Task, error) {
	outcome := domain.TaskOutcome{TaskID: id}
	logger := runLogger.With().Str("task_id", id).Logger()

	t, err := e.graph.Get(id)
	if err != nil {
		logger.Warn().Err(err).Msg("skipping unknown task")
		outcome.Skipped = true
		outcome.Error = err.Error()
		e.metrics.TaskSkipped()
		return outcome, nil, err
	}

	category := handler.Classify(t.Title)
	outcome.Title = t.Title
	outcome.Category = category
	logger = logger.With().Str("category", category.String()).Logger()

	if err := e.graph.ValidateDependencies(id); err != nil {
		return e.fail(ctx, logger, runID, index, total, t, outcome, time.Time{}, 0, err), t, err
	}

	if !e.graph.Start(id) {
		logger.Warn().Msg("start guard failed, task left pending")
		outcome.Skipped = true
		outcome.Status = constants.TaskStatusPending
		outcome.Error = "dependencies not completed"
		e.metrics.TaskSkipped()
		return outcome, t, errTaskSkipped
	}

	e.metrics.TaskStarted(category)
	e.emit(runID, t, startPercent(index, total), constants.ProgressStarting, fmt.Sprintf("Starting %s task", t.TaskType))
	started := e.clock.Now()

	h, err := e.handlers.Resolve(t)
	if err != nil {
		return e.fail(ctx, logger, runID, index, total, t, outcome, started, 0, err), t, err
	}

	run := func(ctx context.Context, attempt int) (*handler.Result, error) {
		if attempt > 1 {
			e.metrics.TaskRetried(category)
			e.emit(runID, t, startPercent(index, total), constants.ProgressExecuting, fmt.Sprintf("Retrying (attempt %d)", attempt))
		}
		return h.Handle(ctx, &handler.Request{
			Task:    t,
			Attempt: attempt,
			Emit: func(status constants.ProgressStatus, details string) {
				e.emit(runID, t, startPercent(index, total), status, details)
			},
		})
	}

	res, attempts, err := retry.Do(ctx, e.config.TaskRetry, run,
		retry.WithSleep(e.sleep),
		retry.WithShouldRetry(retryableTaskError),
		retry.WithLogger(logger, "task "+id),
	)
	if err != nil {
		return e.fail(ctx, logger, runID, index, total, t, outcome, started, attempts, err), t, err
	}

	duration := e.clock.Now().Sub(started)
	if !e.graph.Complete(id, duration) {
		status := constants.TaskStatus("unknown")
		if current, getErr := e.graph.Get(id); getErr == nil {
			status = current.Status
		}
		err := fmt.Errorf("%w: task %s is %s and cannot be completed",
			forgeerrors.ErrInvalidTransition, id, status)
		return e.fail(ctx, logger, runID, index, total, t, outcome, started, attempts, err), t, err
	}
	outcome.Status = constants.TaskStatusCompleted
	outcome.Attempts = attempts
	outcome.Duration = duration
	if res != nil {
		outcome.Artifacts = res.Artifacts
	}

	details := "Task completed"
	if res != nil && res.Details != "" {
		details = res.Details
	}
	e.emit(runID, t, endPercent(index, total), constants.ProgressCompleted, details)
	e.metrics.TaskFinished(category, constants.TaskStatusCompleted, duration)
	e.recordPerformance(category, duration, true, map[string]any{
		"task_id":              id,
		constants.MetaAttempts: attempts,
		constants.MetaCategory: category.String(),
	})

	logger.Info().Int("attempts", attempts).Dur("duration", duration).Msg("task completed")
	return outcome, t, nil
}

// fail marks the task failed and reports it everywhere a success would be.
func (e *Engine) fail(ctx context.Context, logger zerolog.Logger, runID string, index, total int, t *domain.Task,
	outcome domain.TaskOutcome, started time.Time, attempts int, cause error,
) domain.TaskOutcome {
	var duration time.Duration
	if !started.IsZero() {
		duration = e.clock.Now().Sub(started)
	}
	reason := cause.Error()
	e.graph.Fail(t.ID, reason)

	outcome.Status = constants.TaskStatusFailed
	outcome.Attempts = attempts
	outcome.Duration = duration
	outcome.Error = reason

	errType := ErrorType(cause)
	e.emit(runID, t, endPercent(index, total), constants.ProgressFailed, "Task failed: "+reason)
	e.metrics.TaskFinished(outcome.Category, constants.TaskStatusFailed, duration)
	e.recordPerformance(outcome.Category, duration, false, map[string]any{
		"task_id":               t.ID,
		constants.MetaAttempts:  attempts,
		constants.MetaCategory:  outcome.Category.String(),
		constants.MetaErrorType: errType,
	})

	event := logger.Error()
	if ctx.Err() != nil {
		event = logger.Warn()
	}
	event.Err(cause).Str("error_type", errType).Int("attempts", attempts).Msg("task failed")
	return outcome
}

func (e *Engine) emit(runID string, t *domain.Task, percent int, status constants.ProgressStatus, details string) {
	e.notifier.Notify(domain.ProgressEvent{
		RunID:              runID,
		TaskID:             t.ID,
		CurrentTask:        t.Title,
		ProgressPercentage: percent,
		Status:             status,
		Details:            details,
		Timestamp:          e.clock.Now().UTC(),
	})
}

func (e *Engine) recordPerformance(category constants.Category, d time.Duration, success bool, metadata map[string]any) {
	if e.recorder == nil {
		return
	}
	e.recorder.RecordPerformance("task."+category.String(), d, success, metadata)
}

func (e *Engine) recordRun(ctx context.Context, logger zerolog.Logger, result *domain.RunResult) {
	if e.recorder == nil {
		return
	}
	e.recorder.UpdateProjectState(constants.StateTaskProgress, result.Progress)
	e.recorder.UpdateProjectState(constants.StateLastRun, map[string]any{
		"run_id":       result.RunID,
		"success":      result.Success,
		"error":        result.Error,
		"started_at":   result.StartedAt,
		"completed_at": result.CompletedAt,
	})
	e.autosave(ctx, logger)
}

// autosave flushes the store. Failures are logged and never stop the run.
func (e *Engine) autosave(ctx context.Context, logger zerolog.Logger) {
	if e.recorder == nil || !e.config.Autosave {
		return
	}
	if err := e.recorder.Save(context.WithoutCancel(ctx)); err != nil {
		logger.Warn().Err(err).Msg("autosave failed")
	}
}

// errTaskSkipped marks a task whose start guard failed.
var errTaskSkipped = errors.New("task skipped") //nolint:gochecknoglobals // sentinel

func startPercent(index, total int) int {
	if total == 0 {
		return 0
	}
	return index * 100 / total
}

func endPercent(index, total int) int {
	if total == 0 {
		return 100
	}
	return (index + 1) * 100 / total
}

// retryableTaskError decides whether a failed task attempt is retried.
// Deterministic failures are not.
func retryableTaskError(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}
	for _, target := range []error{
		forgeerrors.ErrTestFailure,
		forgeerrors.ErrValidation,
		forgeerrors.ErrCommandNotConfigured,
		forgeerrors.ErrNoHandler,
	} {
		if errors.Is(err, target) {
			return false
		}
	}
	return true
}

// ErrorType classifies an error for the error_type metadata of failure records.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, forgeerrors.ErrTestFailure):
		return "test_failure"
	case errors.Is(err, forgeerrors.ErrEmptyGeneration):
		return "empty_generation"
	case errors.Is(err, forgeerrors.ErrCommandNotConfigured):
		return "not_configured"
	case errors.Is(err, forgeerrors.ErrGenerationFailed):
		return "generation_failure"
	case errors.Is(err, forgeerrors.ErrDeploymentFailed):
		return "deployment_failure"
	case errors.Is(err, forgeerrors.ErrNoHandler):
		return "no_handler"
	case errors.Is(err, forgeerrors.ErrValidation):
		return "validation"
	default:
		return constants.UnknownErrorType
	}
}

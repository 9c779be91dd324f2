package task

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/clock"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// Spec describes a task to create.
type Spec struct {
	Title         string
	Description   string
	Priority      constants.TaskPriority
	Dependencies  []string
	TaskType      string
	EstimatedTime time.Duration
	Metadata      map[string]any
}

// Graph owns the tasks of a project and enforces the status state machine.
// All methods are safe for concurrent use; tasks handed out are copies.
type Graph struct {
	mu      sync.RWMutex
	tasks   map[string]*domain.Task
	order   []string
	counter int
	clock   clock.Clock
	logger  zerolog.Logger
}

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithClock sets the time source used for task timestamps.
func WithClock(c clock.Clock) GraphOption {
	return func(g *Graph) {
		if c != nil {
			g.clock = c
		}
	}
}

// NewGraph creates an empty task graph.
func NewGraph(logger zerolog.Logger, opts ...GraphOption) *Graph {
	g := &Graph{
		tasks:  make(map[string]*domain.Task),
		clock:  clock.RealClock{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TaskType derives the snake_case task type from a title.
func TaskType(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), "_"))
}

// Create adds a pending task and returns its id. Dependencies are not
// checked here; forward references are allowed and are resolved when the
// task is started.
func (g *Graph) Create(spec Spec) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := fmt.Sprintf("task_%04d", g.counter)
	g.counter++

	priority := spec.Priority
	if priority == "" {
		priority = constants.PriorityMedium
	}
	taskType := spec.TaskType
	if taskType == "" {
		taskType = TaskType(spec.Title)
	}

	deps := make([]string, 0, len(spec.Dependencies))
	for _, dep := range spec.Dependencies {
		if !slices.Contains(deps, dep) {
			deps = append(deps, dep)
		}
	}

	var metadata map[string]any
	if spec.Metadata != nil {
		metadata = maps.Clone(spec.Metadata)
	}

	g.tasks[id] = &domain.Task{
		ID:            id,
		Title:         spec.Title,
		Description:   spec.Description,
		Status:        constants.TaskStatusPending,
		Priority:      priority,
		Dependencies:  deps,
		TaskType:      taskType,
		EstimatedTime: spec.EstimatedTime,
		CreatedAt:     g.clock.Now().UTC(),
		Metadata:      metadata,
	}
	g.order = append(g.order, id)

	g.logger.Debug().
		Str("task_id", id).
		Str("title", spec.Title).
		Str("priority", priority.String()).
		Strs("dependencies", deps).
		Msg("task created")

	return id
}

// Get returns a copy of the task with the given id.
func (g *Graph) Get(id string) (*domain.Task, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t, ok := g.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w: %w", id, forgeerrors.ErrValidation, forgeerrors.ErrTaskNotFound)
	}
	return t.Clone(), nil
}

// All returns copies of every task in creation order.
func (g *Graph) All() []*domain.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*domain.Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id].Clone())
	}
	return out
}

// Ready returns pending tasks whose dependencies are all completed, highest
// priority first. Tasks of equal priority keep creation order.
func (g *Graph) Ready() []*domain.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ready []*domain.Task
	for _, id := range g.order {
		t := g.tasks[id]
		if t.Status == constants.TaskStatusPending && g.dependenciesMet(t) {
			ready = append(ready, t.Clone())
		}
	}
	sort.SliceStable(ready, func(i, j int) bool {
		return ready[i].Priority.Rank() > ready[j].Priority.Rank()
	})
	return ready
}

// ValidateDependencies reports the first dependency id that does not exist.
func (g *Graph) ValidateDependencies(id string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t, ok := g.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w: %w", id, forgeerrors.ErrValidation, forgeerrors.ErrTaskNotFound)
	}
	for _, dep := range t.Dependencies {
		if _, exists := g.tasks[dep]; !exists {
			return fmt.Errorf("task %s depends on %s: %w: %w", id, dep, forgeerrors.ErrValidation, forgeerrors.ErrUnknownDependency)
		}
	}
	return nil
}

// dependenciesMet must be called with the lock held.
func (g *Graph) dependenciesMet(t *domain.Task) bool {
	for _, dep := range t.Dependencies {
		d, ok := g.tasks[dep]
		if !ok || d.Status != constants.TaskStatusCompleted {
			return false
		}
	}
	return true
}

// Start moves a task to in_progress. It succeeds only when the task is
// pending and every dependency exists and is completed; otherwise nothing
// changes and false is returned.
func (g *Graph) Start(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.tasks[id]
	if !ok {
		g.logger.Warn().Str("task_id", id).Msg("cannot start unknown task")
		return false
	}
	if t.Status != constants.TaskStatusPending {
		g.logger.Debug().Str("task_id", id).Str("status", t.Status.String()).Msg("task is not pending")
		return false
	}
	if !g.dependenciesMet(t) {
		g.logger.Debug().Str("task_id", id).Strs("dependencies", t.Dependencies).Msg("task dependencies not completed")
		return false
	}

	return Transition(t, constants.TaskStatusInProgress, "started", g.clock.Now().UTC()) == nil
}

// Complete moves an in_progress task to completed and records when it
// finished. actual is the measured duration; zero leaves it unset.
func (g *Graph) Complete(id string, actual time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.tasks[id]
	if !ok || t.Status != constants.TaskStatusInProgress {
		return false
	}

	now := g.clock.Now().UTC()
	if err := Transition(t, constants.TaskStatusCompleted, "completed", now); err != nil {
		return false
	}
	t.CompletedAt = &now
	if actual > 0 {
		t.ActualTime = actual
	}
	return true
}

// Fail marks a task failed with reason, whatever its current status. It
// returns false only when the task does not exist.
func (g *Graph) Fail(id, reason string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.tasks[id]
	if !ok {
		return false
	}
	if t.Metadata == nil {
		t.Metadata = make(map[string]any)
	}
	t.Metadata[constants.MetaFailureReason] = reason
	forceFail(t, reason, g.clock.Now().UTC())
	return true
}

// Progress aggregates every task in the graph.
func (g *Graph) Progress() domain.Progress {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.progressLocked(g.order)
}

// ProgressFor aggregates only the given ids. Unknown ids are ignored.
func (g *Graph) ProgressFor(ids []string) domain.Progress {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.progressLocked(ids)
}

func (g *Graph) progressLocked(ids []string) domain.Progress {
	var p domain.Progress
	for _, id := range ids {
		t, ok := g.tasks[id]
		if !ok {
			continue
		}
		p.Total++
		switch t.Status {
		case constants.TaskStatusCompleted:
			p.Completed++
		case constants.TaskStatusInProgress:
			p.InProgress++
		case constants.TaskStatusFailed:
			p.Failed++
		case constants.TaskStatusPending, constants.TaskStatusBlocked:
			p.Pending++
		}
	}
	return summarize(p)
}

func summarize(p domain.Progress) domain.Progress {
	if p.Total > 0 {
		p.ProgressPercentage = math.Round(float64(p.Completed)/float64(p.Total)*100*100) / 100
	}

	switch {
	case p.Failed > 0:
		p.Status = constants.OverallHasIssues
	case p.Completed == 0:
		p.Status = constants.OverallNotStarted
	case p.Completed == p.Total:
		p.Status = constants.OverallCompleted
	default:
		p.Status = constants.OverallInProgress
	}
	return p
}

// ClearCompleted removes completed tasks and returns how many were removed.
// Remaining tasks drop the removed ids from their dependencies, since those
// dependencies were satisfied.
func (g *Graph) ClearCompleted() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := make(map[string]struct{})
	kept := g.order[:0]
	for _, id := range g.order {
		if g.tasks[id].Status == constants.TaskStatusCompleted {
			removed[id] = struct{}{}
			delete(g.tasks, id)
			continue
		}
		kept = append(kept, id)
	}
	g.order = kept

	if len(removed) == 0 {
		return 0
	}
	for _, t := range g.tasks {
		t.Dependencies = slices.DeleteFunc(t.Dependencies, func(dep string) bool {
			_, gone := removed[dep]
			return gone
		})
	}

	g.logger.Info().Int("removed", len(removed)).Msg("cleared completed tasks")
	return len(removed)
}

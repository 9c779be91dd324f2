package task

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/forge/internal/constants"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// Phase is one step of the plan template.
type Phase struct {
	Title         string                 `yaml:"title" json:"title"`
	Description   string                 `yaml:"description" json:"description"`
	Priority      constants.TaskPriority `yaml:"priority" json:"priority"`
	EstimatedTime time.Duration          `yaml:"estimated_time" json:"estimated_time"`
}

// DefaultPhases returns the fixed eight-phase chain every plan follows
// unless a template file overrides it.
func DefaultPhases() []Phase {
	est := constants.DefaultEstimatedTime
	return []Phase{
		{Title: "Requirements Analysis", Description: "Analyze and clarify the requirements", Priority: constants.PriorityHigh, EstimatedTime: est},
		{Title: "Architecture Design", Description: "Design the system architecture", Priority: constants.PriorityHigh, EstimatedTime: est},
		{Title: "Database Design", Description: "Design database schema and models", Priority: constants.PriorityMedium, EstimatedTime: est},
		{Title: "Backend Development", Description: "Implement backend API and logic", Priority: constants.PriorityHigh, EstimatedTime: est},
		{Title: "Frontend Development", Description: "Implement user interface", Priority: constants.PriorityMedium, EstimatedTime: est},
		{Title: "Testing", Description: "Write and run tests", Priority: constants.PriorityMedium, EstimatedTime: est},
		{Title: "Documentation", Description: "Create user and technical documentation", Priority: constants.PriorityLow, EstimatedTime: est},
		{Title: "Deployment", Description: "Deploy the application", Priority: constants.PriorityHigh, EstimatedTime: est},
	}
}

type phaseFile struct {
	Phases []Phase `yaml:"phases"`
}

// LoadPhases reads a phase template from a YAML file of the form
//
//	phases:
//	  - title: Backend Development
//	    description: Implement backend API and logic
//	    priority: high
//	    estimated_time: 90m
func LoadPhases(path string) ([]Phase, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read phase template: %w", err)
	}

	var file phaseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse phase template %s: %w", path, err)
	}

	if err := ValidatePhases(file.Phases); err != nil {
		return nil, fmt.Errorf("phase template %s: %w", path, err)
	}
	for i := range file.Phases {
		if file.Phases[i].EstimatedTime == 0 {
			file.Phases[i].EstimatedTime = constants.DefaultEstimatedTime
		}
	}
	return file.Phases, nil
}

// ValidatePhases rejects empty templates, untitled phases, and unknown priorities.
func ValidatePhases(phases []Phase) error {
	if len(phases) == 0 {
		return fmt.Errorf("phases: %w", forgeerrors.ErrEmptyValue)
	}
	for i, p := range phases {
		if p.Title == "" {
			return fmt.Errorf("phase %d title: %w", i, forgeerrors.ErrEmptyValue)
		}
		if p.Priority.Rank() == 0 {
			return fmt.Errorf("phase %q priority %q: %w", p.Title, p.Priority, forgeerrors.ErrValueOutOfRange)
		}
	}
	return nil
}

// Planner turns a requirement into a linear chain of tasks.
type Planner struct {
	graph  *Graph
	phases []Phase
	logger zerolog.Logger
}

// NewPlanner creates a planner over graph. A nil or empty phases slice
// selects DefaultPhases.
func NewPlanner(graph *Graph, phases []Phase, logger zerolog.Logger) *Planner {
	if len(phases) == 0 {
		phases = DefaultPhases()
	}
	return &Planner{graph: graph, phases: phases, logger: logger}
}

// Phases returns a copy of the template in use.
func (p *Planner) Phases() []Phase {
	out := make([]Phase, len(p.phases))
	copy(out, p.phases)
	return out
}

// Plan creates one task per phase, each depending only on the one before
// it, and returns their ids in order. The requirement is embedded in every
// description but never changes the shape of the plan.
func (p *Planner) Plan(ctx context.Context, requirement string) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	ids := make([]string, 0, len(p.phases))
	var previous string
	for _, phase := range p.phases {
		var deps []string
		if previous != "" {
			deps = []string{previous}
		}
		id := p.graph.Create(Spec{
			Title:         phase.Title,
			Description:   fmt.Sprintf("%s for: %s", phase.Description, requirement),
			Priority:      phase.Priority,
			Dependencies:  deps,
			EstimatedTime: phase.EstimatedTime,
			Metadata:      map[string]any{constants.MetaRequirement: requirement},
		})
		ids = append(ids, id)
		previous = id
	}

	p.logger.Info().
		Int("tasks", len(ids)).
		Str("requirement", requirement).
		Msg("plan created")

	return ids, nil
}

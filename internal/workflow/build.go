package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/retry"
	"github.com/mrz1836/forge/internal/task"
)

// buildState remembers which stages of a build completed so a retried
// attempt resumes instead of planning or executing again.
type buildState struct {
	recorded  bool
	narrative string
	plan      []string
	result    *domain.RunResult
	summary   string
}

// Build plans and executes requirement under the build retry policy and
// returns the run result with a generated summary. It never returns an
// error: when the build budget is exhausted the result has Success false
// and the last error's message.
//
// The stages are the plan narrative, planning, execution, and the summary.
// Only the narrative and the summary are retried; planning and execution
// run at most once per build.
func (s *Service) Build(ctx context.Context, requirement string) *domain.RunResult {
	st := &buildState{}
	logger := s.logger.With().Str("operation", "build").Logger()
	started := s.clock.Now().UTC()

	result, attempts, err := retry.Do(ctx, s.cfg.Retry.Build,
		func(ctx context.Context, attempt int) (*domain.RunResult, error) {
			return s.buildStages(ctx, st, requirement, attempt)
		},
		retry.WithSleep(s.sleep),
		retry.WithShouldRetry(retryableBuildError),
		retry.WithLogger(logger, "build"),
	)

	if result == nil {
		result = st.result
	}
	if result == nil {
		result = &domain.RunResult{
			StartedAt:   started,
			CompletedAt: s.clock.Now().UTC(),
			Progress:    s.graph.ProgressFor(st.plan),
			Outcomes:    []domain.TaskOutcome{},
		}
	}
	result.Requirement = strings.TrimSpace(requirement)
	result.Summary = st.summary

	if err != nil {
		result.Success = false
		result.Error = err.Error()
		logger.Error().Err(err).Int("attempts", attempts).Msg("build failed")
		return result
	}

	logger.Info().
		Bool("success", result.Success).
		Int("attempts", attempts).
		Int("completed", result.Progress.Completed).
		Msg("build finished")
	return result
}

func (s *Service) buildStages(ctx context.Context, st *buildState, requirement string, attempt int) (*domain.RunResult, error) {
	if !st.recorded {
		s.store.AddConversation("user", requirement, map[string]any{"type": "requirement"})
		st.recorded = true
	}

	if st.narrative == "" {
		narrative, err := s.generateText(ctx, narrativePrompt(requirement, s.planner.Phases()))
		if err != nil {
			return nil, fmt.Errorf("plan narrative: %w", err)
		}
		st.narrative = narrative
		s.store.AddConversation("assistant", narrative, map[string]any{"type": "plan", "attempt": attempt})
	}

	if st.plan == nil {
		plan, err := s.Plan(ctx, requirement)
		if err != nil {
			return nil, fmt.Errorf("plan: %w", err)
		}
		st.plan = plan
	}

	if st.result == nil {
		st.result = s.Execute(ctx, st.plan)
	}

	if st.summary == "" {
		summary, err := s.generateText(ctx, summaryPrompt(requirement, st.result))
		if err != nil {
			return st.result, fmt.Errorf("summary: %w", err)
		}
		st.summary = summary
		s.store.AddConversation("assistant", summary, map[string]any{"type": "summary", "run_id": st.result.RunID})
	}

	return st.result, nil
}

func (s *Service) generateText(ctx context.Context, prompt string) (string, error) {
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: %w", forgeerrors.ErrGenerationFailed, forgeerrors.ErrEmptyGeneration)
	}
	return answer, nil
}

// retryableBuildError keeps planning errors out of the build retry loop.
func retryableBuildError(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}
	return !errors.Is(err, forgeerrors.ErrValidation) && !errors.Is(err, forgeerrors.ErrCommandNotConfigured)
}

func narrativePrompt(requirement string, phases []task.Phase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Requirement: %s\n\nThe work will follow these phases:\n", requirement)
	for i, p := range phases {
		fmt.Fprintf(&b, "%d. %s (%s priority): %s\n", i+1, p.Title, p.Priority, p.Description)
	}
	b.WriteString("\nDescribe in a few sentences how you would approach this project.")
	return b.String()
}

func summaryPrompt(requirement string, result *domain.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Requirement: %s\n", requirement)
	fmt.Fprintf(&b, "Run finished with %d of %d tasks completed and %d failed.\n",
		result.Progress.Completed, result.Progress.Total, result.Progress.Failed)
	for _, o := range result.Outcomes {
		line := fmt.Sprintf("- %s: %s", o.Title, o.Status)
		switch {
		case o.Skipped:
			line += " (skipped)"
		case o.Error != "":
			line += " (" + o.Error + ")"
		case len(o.Artifacts) > 0:
			line += " (" + strings.Join(o.Artifacts, ", ") + ")"
		}
		b.WriteString(line + "\n")
	}
	if result.Error != "" {
		fmt.Fprintf(&b, "Run error: %s\n", result.Error)
	}
	b.WriteString("\nWrite a short markdown summary of what was built and what still needs attention.")
	return b.String()
}

package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/memory"
)

// scenarioInsight summarizes the learning records of one scenario.
type scenarioInsight struct {
	Scenario     string `json:"scenario"`
	Attempts     int    `json:"attempts"`
	Successes    int    `json:"successes"`
	LastSolution string `json:"last_solution"`
	LastSuccess  bool   `json:"last_success"`
}

// memoryInsights is what the insights subcommand reports.
type memoryInsights struct {
	Project   string                  `json:"project"`
	Scenarios []scenarioInsight       `json:"scenarios"`
	Patterns  domain.LearningInsights `json:"patterns"`
}

func addMemoryCommand(parent *cobra.Command, env *commandEnv) {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect or clear a project's memory",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "insights",
		Short: "Show what was learned from fixes and failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMemoryInsights(cmd.Context(), env, cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Summarize what the project memory holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMemorySummary(cmd.Context(), env, cmd.OutOrStdout())
		},
	})

	var force bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase the project memory",
		Long: `Erase the conversation, artifacts, project state and learnings of a project
and save the empty memory. Generated files are not touched.

Examples:
  forge memory clear --project todo
  forge memory clear --project todo --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMemoryClear(cmd.Context(), env, cmd.OutOrStdout(), force)
		},
	}
	clearCmd.Flags().BoolVarP(&force, "force", "f", false, "clear without asking for confirmation")
	cmd.AddCommand(clearCmd)

	parent.AddCommand(cmd)
}

func runMemoryInsights(ctx context.Context, env *commandEnv, w io.Writer) error {
	store, err := openStore(ctx, env)
	if err != nil {
		return err
	}

	insights := memoryInsights{
		Project:   store.Project(),
		Scenarios: scenarioInsights(store),
		Patterns:  store.LearnFromPatterns(),
	}

	out := env.output(w)
	if env.flags.Output == OutputJSON {
		return out.JSON(insights)
	}

	if len(insights.Scenarios) == 0 {
		out.Info(fmt.Sprintf("project %s has no learnings yet", insights.Project))
	} else {
		rows := make([][]string, 0, len(insights.Scenarios))
		for _, s := range insights.Scenarios {
			last := "failed"
			if s.LastSuccess {
				last = "worked"
			}
			rows = append(rows, []string{
				s.Scenario,
				fmt.Sprintf("%d/%d", s.Successes, s.Attempts),
				last,
			})
		}
		out.Table([]string{"SCENARIO", "SUCCESSES", "LAST ATTEMPT"}, rows)
	}
	for _, r := range insights.Patterns.Recommendations {
		out.Info(r)
	}
	return nil
}

// scenarioInsights lists every learning scenario, sorted by name.
func scenarioInsights(store *memory.Store) []scenarioInsight {
	learning := store.Snapshot().LearningMemory
	scenarios := make([]string, 0, len(learning))
	for scenario := range learning {
		scenarios = append(scenarios, scenario)
	}
	slices.Sort(scenarios)

	out := make([]scenarioInsight, 0, len(scenarios))
	for _, scenario := range scenarios {
		records := learning[scenario]
		if len(records) == 0 {
			continue
		}
		insight := scenarioInsight{Scenario: scenario, Attempts: len(records)}
		for _, r := range records {
			if r.Success {
				insight.Successes++
			}
		}
		last := records[len(records)-1]
		insight.LastSolution = last.Solution
		insight.LastSuccess = last.Success
		out = append(out, insight)
	}
	return out
}

func runMemorySummary(ctx context.Context, env *commandEnv, w io.Writer) error {
	store, err := openStore(ctx, env)
	if err != nil {
		return err
	}

	summary := store.Summary()
	out := env.output(w)
	if env.flags.Output == OutputJSON {
		return out.JSON(summary)
	}

	languages := "-"
	if len(summary.Languages) > 0 {
		languages = strings.Join(summary.Languages, ", ")
	}
	lastActivity := "never"
	if !summary.LastActivity.IsZero() {
		lastActivity = summary.LastActivity.Local().Format(time.DateTime)
	}
	out.Table([]string{"FIELD", "VALUE"}, [][]string{
		{"project", summary.Project},
		{"conversation entries", strconv.Itoa(summary.ConversationEntries)},
		{"artifacts", strconv.Itoa(summary.Artifacts)},
		{"languages", languages},
		{"state keys", strings.Join(summary.ProjectStateKeys, ", ")},
		{"learning scenarios", strconv.Itoa(summary.LearningScenarios)},
		{"last activity", lastActivity},
	})
	return nil
}

func runMemoryClear(ctx context.Context, env *commandEnv, w io.Writer, force bool) error {
	store, err := openStore(ctx, env)
	if err != nil {
		return err
	}

	if !force {
		confirmed, confirmErr := env.confirm(
			fmt.Sprintf("Clear the memory of project %s?", store.Project()),
			"Conversation, artifacts, project state and learnings are erased. Generated files are kept.",
		)
		if confirmErr != nil {
			return confirmErr
		}
		if !confirmed {
			return forgeerrors.ErrOperationCanceled
		}
	}

	store.Clear()
	if err := store.Save(ctx); err != nil {
		return err
	}
	env.output(w).Success(fmt.Sprintf("memory of project %s cleared", store.Project()))
	return nil
}

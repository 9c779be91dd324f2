package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/constants"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// artifactHandler generates one file for its category.
type artifactHandler struct {
	category  constants.Category
	spec      config.ArtifactSpec
	dependsOn []string
	deps      *Deps
}

func newArtifactHandler(c constants.Category, spec config.ArtifactSpec, dependsOn []string, deps *Deps) *artifactHandler {
	return &artifactHandler{category: c, spec: spec, dependsOn: dependsOn, deps: deps}
}

// Category implements Handler.
func (h *artifactHandler) Category() constants.Category { return h.category }

// Handle generates the artifact from the task and the relevant context,
// writes it, and records it in memory.
func (h *artifactHandler) Handle(ctx context.Context, req *Request) (*Result, error) {
	t := req.Task
	logger := h.deps.Logger.With().
		Str("task_id", t.ID).
		Str("category", h.category.String()).
		Str("file", h.spec.File).
		Logger()

	req.emit(constants.ProgressGenerating, fmt.Sprintf("Generating %s code", h.category))

	relevant := h.deps.Memory.RelevantContext(t.Description, h.deps.ContextEntries)
	raw, err := h.deps.Generator.Generate(ctx, h.prompt(t.Title, t.Description, relevant))
	if err != nil {
		return nil, err
	}
	content := StripFences(raw)
	if content == "" {
		return nil, fmt.Errorf("%s: %w: %w", h.spec.File, forgeerrors.ErrGenerationFailed, forgeerrors.ErrEmptyGeneration)
	}

	if err := h.deps.Files.Write(ctx, h.spec.File, content+"\n"); err != nil {
		return nil, err
	}

	h.deps.Memory.AddCodeContext(h.spec.File, content, h.spec.Language)
	h.deps.Memory.AddSemanticContext(h.spec.File, content, []string{h.category.String(), h.spec.Language})
	if len(h.dependsOn) > 0 {
		h.deps.Memory.TrackCodeDependency(h.spec.File, h.dependsOn)
	}

	logger.Info().Int("bytes", len(content)).Msg("artifact generated")
	return &Result{
		Artifacts: []string{h.spec.File},
		Details:   fmt.Sprintf("wrote %s (%d lines)", h.spec.File, strings.Count(content, "\n")+1),
	}, nil
}

func (h *artifactHandler) prompt(title, description, relevant string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate the %s code for this task as a single %s file named %s.\n", h.category, h.spec.Language, h.spec.File)
	fmt.Fprintf(&b, "Task: %s\nDescription: %s\n", title, description)
	if relevant != "" {
		fmt.Fprintf(&b, "\nRelevant context:\n%s\n", relevant)
	}
	b.WriteString("\nReturn only the file contents.")
	return b.String()
}

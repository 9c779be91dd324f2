// Package handler executes a single task by category.
//
// The executor resolves every task to exactly one Handler through a
// Registry. Resolution classifies the task title against a fixed category
// precedence (backend, frontend, database, testing, deployment) and falls back
// to the generic handler when no keyword matches.
//
// Import rules:
//   - CAN import: internal/ai, internal/config, internal/constants, internal/domain,
//     internal/errors, internal/workspace, std lib
//   - MUST NOT import: internal/task, internal/memory, internal/cli, internal/workflow
package handler

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/mrz1836/forge/internal/ai"
	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	"github.com/mrz1836/forge/internal/workspace"
)

// Emitter reports a sub-step of the running task.
type Emitter func(status constants.ProgressStatus, details string)

// Request is the input to a handler.
type Request struct {
	// Task is a snapshot of the task being executed.
	Task *domain.Task

	// Attempt is the 1-based task attempt.
	Attempt int

	// Emit reports sub-steps. It is never nil when passed by the executor.
	Emit Emitter
}

func (r *Request) emit(status constants.ProgressStatus, details string) {
	if r.Emit != nil {
		r.Emit(status, details)
	}
}

// Result is what a successful handler produced.
type Result struct {
	// Artifacts are the project-relative paths written or replaced.
	Artifacts []string

	// Details is a one-line description of the outcome.
	Details string
}

// Handler executes tasks of one category.
type Handler interface {
	Category() constants.Category
	Handle(ctx context.Context, req *Request) (*Result, error)
}

// Memory is the part of the context store the handlers read and write.
type Memory interface {
	RelevantContext(query string, maxEntries int) string
	AddConversation(role, content string, metadata map[string]any)
	AddCodeContext(path, content, language string)
	Artifact(path string) (domain.CodeArtifact, bool)
	ArtifactPaths() []string
	AddSemanticContext(key, content string, tags []string)
	TrackCodeDependency(path string, deps []string)
	AddLearning(scenario, solution string, success bool)
}

// Deps are the collaborators shared by the built-in handlers.
type Deps struct {
	Generator ai.Generator
	Tester    ai.Tester
	Deployer  ai.Deployer
	Files     workspace.FS
	Memory    Memory
	Artifacts config.ArtifactsConfig

	// ContextEntries is how many recent conversation entries go into prompts.
	ContextEntries int

	Logger zerolog.Logger
}

// Classify returns the category a title is routed to.
func Classify(title string) constants.Category {
	folded := cases.Fold().String(title)
	for _, c := range constants.CategoryOrder() {
		if strings.Contains(folded, string(c)) {
			return c
		}
	}
	return constants.CategoryGeneric
}

// StripFences removes a surrounding markdown code fence from generated text.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return trimmed
	}
	body = strings.TrimRight(body, " \t\n")
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

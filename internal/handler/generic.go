package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/forge/internal/constants"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// GenericHandler asks the generator what completes the task and succeeds
// when the answer is not empty.
type GenericHandler struct {
	deps *Deps
}

// NewGenericHandler creates the fallback handler.
func NewGenericHandler(deps *Deps) *GenericHandler {
	return &GenericHandler{deps: deps}
}

// Category implements Handler.
func (h *GenericHandler) Category() constants.Category { return constants.CategoryGeneric }

// Handle implements Handler.
func (h *GenericHandler) Handle(ctx context.Context, req *Request) (*Result, error) {
	t := req.Task
	req.emit(constants.ProgressGenerating, "Asking for next action")

	prompt := fmt.Sprintf("Task: %s\nDescription: %s\n\nWhat specific action should be taken to complete this task?",
		t.Title, t.Description)
	answer, err := h.deps.Generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("%w: %w", forgeerrors.ErrGenerationFailed, forgeerrors.ErrEmptyGeneration)
	}

	h.deps.Memory.AddConversation("assistant", answer, map[string]any{
		"task_id":   t.ID,
		"task_type": t.TaskType,
	})
	return &Result{Details: firstLine(answer)}, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/forge/internal/constants"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// DeploymentHandler hands the project directory to the deployer.
type DeploymentHandler struct {
	deps *Deps
}

// NewDeploymentHandler creates the deployment handler.
func NewDeploymentHandler(deps *Deps) *DeploymentHandler {
	return &DeploymentHandler{deps: deps}
}

// Category implements Handler.
func (h *DeploymentHandler) Category() constants.Category { return constants.CategoryDeployment }

// Handle implements Handler.
func (h *DeploymentHandler) Handle(ctx context.Context, req *Request) (*Result, error) {
	dir := h.deps.Files.Root()
	req.emit(constants.ProgressExecuting, "Deploying "+dir)

	res, err := h.deps.Deployer.Deploy(ctx, dir)
	if err != nil {
		return nil, err
	}
	details := strings.Join(res.Diagnostics, "; ")
	h.deps.Memory.AddConversation("system", "deployment: "+details, map[string]any{
		"task_id": req.Task.ID,
		"success": res.Success,
	})
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", forgeerrors.ErrDeploymentFailed, details)
	}
	return &Result{Details: details}, nil
}

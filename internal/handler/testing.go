package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/forge/internal/constants"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// TestingHandler checks every tracked artifact and gives each failing one a
// single chance to be fixed.
type TestingHandler struct {
	deps *Deps
}

// NewTestingHandler creates the testing handler.
func NewTestingHandler(deps *Deps) *TestingHandler {
	return &TestingHandler{deps: deps}
}

// Category implements Handler.
func (h *TestingHandler) Category() constants.Category { return constants.CategoryTesting }

// Handle runs the tester over every artifact. A failing artifact gets one
// generated fix; the fix replaces the stored artifact only if it passes the
// tester. Files that still fail are reported together as ErrTestFailure
// after all artifacts were processed.
func (h *TestingHandler) Handle(ctx context.Context, req *Request) (*Result, error) {
	paths := h.deps.Memory.ArtifactPaths()
	if len(paths) == 0 {
		return &Result{Details: "no artifacts to test"}, nil
	}

	var fixed, failed []string
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req.emit(constants.ProgressExecuting, fmt.Sprintf("Testing %s (%d/%d)", path, i+1, len(paths)))

		ok, repaired, err := h.check(ctx, req, path)
		if err != nil {
			return nil, err
		}
		switch {
		case repaired:
			fixed = append(fixed, path)
		case !ok:
			failed = append(failed, path)
		}
	}

	details := fmt.Sprintf("tested %d files, fixed %d, failing %d", len(paths), len(fixed), len(failed))
	result := &Result{Artifacts: fixed, Details: details}
	if len(failed) > 0 {
		return result, forgeerrors.Join(forgeerrors.ErrTestFailure, nil,
			fmt.Sprintf("%s: %s", details, strings.Join(failed, ", ")))
	}
	return result, nil
}

// check tests one artifact and attempts one fix. It returns whether the
// artifact now passes and whether a fix was applied.
func (h *TestingHandler) check(ctx context.Context, req *Request, path string) (bool, bool, error) {
	logger := h.deps.Logger.With().Str("task_id", req.Task.ID).Str("path", path).Logger()
	scenario := "fix:" + path

	artifact, ok := h.deps.Memory.Artifact(path)
	if !ok {
		return true, false, nil
	}

	res, err := h.deps.Tester.Test(ctx, artifact.Content, path)
	if err != nil {
		return false, false, err
	}
	if res.Success {
		logger.Debug().Msg("artifact passed")
		return true, false, nil
	}

	logger.Warn().Strs("diagnostics", res.Diagnostics).Msg("artifact failed, requesting fix")
	req.emit(constants.ProgressGenerating, "Fixing "+path)

	raw, err := h.deps.Generator.Generate(ctx, FixPrompt(artifact.Content, path, strings.Join(res.Diagnostics, "\n")))
	if err != nil {
		if ctx.Err() != nil {
			return false, false, ctx.Err()
		}
		h.deps.Memory.AddLearning(scenario, "fix generation failed: "+err.Error(), false)
		return false, false, nil
	}
	candidate := StripFences(raw)
	if candidate == "" || candidate == artifact.Content {
		h.deps.Memory.AddLearning(scenario, "no usable fix generated", false)
		return false, false, nil
	}

	retest, err := h.deps.Tester.Test(ctx, candidate, path)
	if err != nil {
		return false, false, err
	}
	if !retest.Success {
		h.deps.Memory.AddLearning(scenario, "fix rejected: "+strings.Join(retest.Diagnostics, "; "), false)
		logger.Warn().Strs("diagnostics", retest.Diagnostics).Msg("fix did not pass")
		return false, false, nil
	}

	if err := h.deps.Files.Write(ctx, path, candidate+"\n"); err != nil {
		return false, false, err
	}
	h.deps.Memory.AddCodeContext(path, candidate, artifact.Language)
	h.deps.Memory.AddLearning(scenario, "fixed: "+strings.Join(res.Diagnostics, "; "), true)
	logger.Info().Msg("artifact fixed")
	return true, true, nil
}

// FixPrompt asks for a corrected version of content.
func FixPrompt(content, path, problems string) string {
	return fmt.Sprintf("The file %s has these problems:\n%s\n\nCode with issues:\n%s\n\n"+
		"Return only the corrected code for the whole file.", path, problems, content)
}

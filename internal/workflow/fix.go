package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mrz1836/forge/internal/config"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/handler"
)

// FixResult is the outcome of DebugAndFix.
type FixResult struct {
	Path        string   `json:"path"`
	Fixed       bool     `json:"fixed"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// DebugAndFix asks for a corrected version of a generated file given an
// error message. The correction is written and recorded only when it passes
// the tester. Every outcome is recorded as a learning under "debug:<path>".
func (s *Service) DebugAndFix(ctx context.Context, path, errorMessage string) (*FixResult, error) {
	path = filepath.ToSlash(filepath.Clean(path))
	logger := s.logger.With().Str("operation", "debug_and_fix").Str("path", path).Logger()
	scenario := "debug:" + path

	if strings.TrimSpace(errorMessage) == "" {
		return nil, fmt.Errorf("error message: %w: %w", forgeerrors.ErrValidation, forgeerrors.ErrEmptyValue)
	}

	content, ok, err := s.files.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("file %s: %w: %w", path, forgeerrors.ErrValidation, forgeerrors.ErrFileNotFound)
	}

	prompt := handler.FixPrompt(content, path, errorMessage)
	if relevant := s.store.RelevantContext(errorMessage+" "+path, s.cfg.Memory.ContextEntries); relevant != "" {
		prompt += "\n\nRelevant context:\n" + relevant
	}

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		if ctx.Err() == nil {
			s.store.AddLearning(scenario, "fix generation failed: "+err.Error(), false)
		}
		return nil, err
	}

	result := &FixResult{Path: path}
	candidate := handler.StripFences(raw)
	if candidate == "" || candidate == strings.TrimSpace(content) {
		result.Diagnostics = []string{"no usable fix generated"}
		s.store.AddLearning(scenario, result.Diagnostics[0], false)
		logger.Warn().Msg("no usable fix generated")
		return result, nil
	}

	res, err := s.tester.Test(ctx, candidate, path)
	if err != nil {
		return nil, err
	}
	result.Diagnostics = res.Diagnostics
	if !res.Success {
		s.store.AddLearning(scenario, "fix rejected: "+strings.Join(res.Diagnostics, "; "), false)
		logger.Warn().Strs("diagnostics", res.Diagnostics).Msg("fix did not pass")
		return result, nil
	}

	if err := s.files.Write(ctx, path, candidate+"\n"); err != nil {
		return nil, err
	}
	s.store.AddCodeContext(path, candidate, s.languageOf(path))
	s.store.AddLearning(scenario, "fixed: "+errorMessage, true)
	s.store.AddConversation("system", "Fixed "+path, map[string]any{"type": "fix", "error": errorMessage})
	result.Fixed = true

	logger.Info().Msg("file fixed")
	return result, nil
}

// languageOf prefers the language already recorded for path, then the
// configured artifact language, then the file extension.
func (s *Service) languageOf(path string) string {
	if a, ok := s.store.Artifact(path); ok && a.Language != "" {
		return a.Language
	}
	for _, spec := range []config.ArtifactSpec{s.cfg.Artifacts.Backend, s.cfg.Artifacts.Frontend, s.cfg.Artifacts.Database} {
		if spec.File == path {
			return spec.Language
		}
	}
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

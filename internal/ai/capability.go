// Package ai provides the external capabilities the executor depends on:
// content generation, structural testing of generated files, and deployment.
//
// Each capability is a narrow interface so tests and alternative backends can
// replace the command-line implementations in this package.
//
// Import rules:
//   - CAN import: internal/config, internal/constants, internal/domain,
//     internal/errors, internal/ctxutil, std lib
//   - MUST NOT import: internal/task, internal/handler, internal/memory, internal/cli
package ai

import (
	"context"

	"github.com/mrz1836/forge/internal/domain"
)

// Generator turns a prompt into text. Implementations return an error
// matching ErrGenerationFailed when the backend fails or answers with nothing.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Tester checks one artifact. A failing check is reported through the
// result, not as an error; errors mean the check itself could not run.
type Tester interface {
	Test(ctx context.Context, content, path string) (*domain.TestResult, error)
}

// Deployer deploys a generated project directory.
type Deployer interface {
	Deploy(ctx context.Context, projectDir string) (*domain.DeployResult, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

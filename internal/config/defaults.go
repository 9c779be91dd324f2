package config

import (
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/retry"
)

// Default generation command settings.
const (
	DefaultAICommand = "claude"
	DefaultAIArg     = "--print"
)

// DefaultConfig returns a new Config with the built-in defaults.
// These are the base layer that config files, environment variables and
// CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Command: DefaultAICommand,
			Args:    []string{DefaultAIArg},
			Timeout: constants.DefaultGenerationTimeout,
		},
		Retry: RetryConfig{
			Build: retry.BuildPolicy(),
			Task:  retry.TaskPolicy(),
		},
		Memory: MemoryConfig{
			ContextEntries: constants.DefaultContextEntries,
			TokenCacheSize: constants.DefaultTokenCacheSize,
			Autosave:       true,
		},
		Project: ProjectConfig{
			Name:      constants.DefaultProjectName,
			OutputDir: constants.DefaultOutputDir,
		},
		Artifacts: DefaultArtifacts(),
		Deploy: DeployConfig{
			Timeout: constants.DefaultDeployTimeout,
		},
	}
}

// DefaultArtifacts returns the built-in per-category files.
func DefaultArtifacts() ArtifactsConfig {
	return ArtifactsConfig{
		Backend:  ArtifactSpec{File: "main.py", Language: "python"},
		Frontend: ArtifactSpec{File: "frontend.html", Language: "html"},
		Database: ArtifactSpec{File: "models.py", Language: "python"},
	}
}

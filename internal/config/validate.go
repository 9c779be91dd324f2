package config

import (
	"github.com/mrz1836/forge/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - ai.command must not be empty and ai.timeout must be positive
//   - ai.requests_per_minute and ai.burst must not be negative
//   - both retry policies need at least one attempt and base <= max delay
//   - memory.context_entries and memory.token_cache_size must be positive
//   - project.name and project.output_dir must not be empty
//   - every artifact needs a file name
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateAIConfig(&cfg.AI); err != nil {
		return err
	}
	if err := cfg.Retry.Build.Validate(); err != nil {
		return errors.Wrap(err, "retry.build")
	}
	if err := cfg.Retry.Task.Validate(); err != nil {
		return errors.Wrap(err, "retry.task")
	}
	if err := validateMemoryConfig(&cfg.Memory); err != nil {
		return err
	}
	if err := validateProjectConfig(&cfg.Project); err != nil {
		return err
	}
	return validateArtifacts(&cfg.Artifacts)
}

func validateAIConfig(cfg *AIConfig) error {
	if cfg.Command == "" {
		return errors.Wrap(errors.ErrEmptyValue, "ai.command must be set")
	}
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrValueOutOfRange, "ai.timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.RequestsPerMinute < 0 {
		return errors.Wrapf(errors.ErrValueOutOfRange, "ai.requests_per_minute must not be negative, got %d", cfg.RequestsPerMinute)
	}
	if cfg.Burst < 0 {
		return errors.Wrapf(errors.ErrValueOutOfRange, "ai.burst must not be negative, got %d", cfg.Burst)
	}
	return nil
}

func validateMemoryConfig(cfg *MemoryConfig) error {
	if cfg.ContextEntries < 1 {
		return errors.Wrapf(errors.ErrValueOutOfRange, "memory.context_entries must be positive, got %d", cfg.ContextEntries)
	}
	if cfg.TokenCacheSize < 1 {
		return errors.Wrapf(errors.ErrValueOutOfRange, "memory.token_cache_size must be positive, got %d", cfg.TokenCacheSize)
	}
	return nil
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if cfg.Name == "" {
		return errors.Wrap(errors.ErrEmptyValue, "project.name must be set")
	}
	if cfg.OutputDir == "" {
		return errors.Wrap(errors.ErrEmptyValue, "project.output_dir must be set")
	}
	return nil
}

func validateArtifacts(cfg *ArtifactsConfig) error {
	for name, spec := range map[string]ArtifactSpec{
		"backend":  cfg.Backend,
		"frontend": cfg.Frontend,
		"database": cfg.Database,
	} {
		if spec.File == "" {
			return errors.Wrapf(errors.ErrEmptyValue, "artifacts.%s.file must be set", name)
		}
	}
	return nil
}

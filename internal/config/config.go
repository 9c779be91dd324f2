// Package config provides configuration management for forge with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (FORGE_* prefix)
//  3. Project config (.forge/config.yaml)
//  4. Global config (~/.forge/config.yaml)
//  5. Built-in defaults
//
// IMPORTANT: This package may import internal/constants, internal/errors and
// internal/retry, but MUST NOT import internal/domain or other internal packages.
package config

import (
	"time"

	"github.com/mrz1836/forge/internal/retry"
)

// Config is the root configuration structure for forge.
type Config struct {
	// AI configures the generation command.
	AI AIConfig `yaml:"ai" mapstructure:"ai"`

	// Retry holds the build-level and task-level retry policies.
	Retry RetryConfig `yaml:"retry" mapstructure:"retry"`

	// Planner configures how requirements become task plans.
	Planner PlannerConfig `yaml:"planner" mapstructure:"planner"`

	// Memory configures the per-project context store.
	Memory MemoryConfig `yaml:"memory" mapstructure:"memory"`

	// Project names the project and where its generated files go.
	Project ProjectConfig `yaml:"project" mapstructure:"project"`

	// Artifacts maps task categories to the file each one writes.
	Artifacts ArtifactsConfig `yaml:"artifacts" mapstructure:"artifacts"`

	// Deploy configures the deployment command.
	Deploy DeployConfig `yaml:"deploy" mapstructure:"deploy"`

	// Metrics configures executor metrics export.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// AIConfig contains settings for the generation command.
// The prompt is written to the command's stdin and its stdout is the answer.
type AIConfig struct {
	// Command is the executable to run, e.g. "claude".
	// Default: "claude"
	Command string `yaml:"command" mapstructure:"command"`

	// Args are passed to Command on every call.
	// Default: ["--print"]
	Args []string `yaml:"args" mapstructure:"args"`

	// Timeout bounds a single generation.
	// Default: 5 minutes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// RequestsPerMinute limits generation calls. Zero disables limiting.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`

	// Burst is the number of calls allowed back to back before limiting applies.
	Burst int `yaml:"burst" mapstructure:"burst"`
}

// RetryConfig holds the two retry policies.
type RetryConfig struct {
	Build retry.Policy `yaml:"build" mapstructure:"build"`
	Task  retry.Policy `yaml:"task" mapstructure:"task"`
}

// PlannerConfig configures planning.
type PlannerConfig struct {
	// TemplateFile is an optional YAML file with a "phases" list that replaces
	// the built-in eight phases.
	TemplateFile string `yaml:"template_file" mapstructure:"template_file"`
}

// MemoryConfig configures the context store.
type MemoryConfig struct {
	// Dir holds one subdirectory per project. Empty means ~/.forge/memory.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// ContextEntries is how many recent conversation entries go into a prompt.
	ContextEntries int `yaml:"context_entries" mapstructure:"context_entries"`

	// TokenCacheSize is the number of token sets kept for relevance matching.
	TokenCacheSize int `yaml:"token_cache_size" mapstructure:"token_cache_size"`

	// Autosave writes the snapshot after every task.
	Autosave bool `yaml:"autosave" mapstructure:"autosave"`
}

// ProjectConfig names the project.
type ProjectConfig struct {
	Name      string `yaml:"name" mapstructure:"name"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// ArtifactSpec is the file a category's handler writes.
type ArtifactSpec struct {
	File     string `yaml:"file" mapstructure:"file"`
	Language string `yaml:"language" mapstructure:"language"`
}

// ArtifactsConfig maps the artifact-producing categories to their files.
type ArtifactsConfig struct {
	Backend  ArtifactSpec `yaml:"backend" mapstructure:"backend"`
	Frontend ArtifactSpec `yaml:"frontend" mapstructure:"frontend"`
	Database ArtifactSpec `yaml:"database" mapstructure:"database"`
}

// DeployConfig configures deployment. An empty command only checks that the
// project directory holds files.
type DeployConfig struct {
	Command string        `yaml:"command" mapstructure:"command"`
	Args    []string      `yaml:"args" mapstructure:"args"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	// Textfile, when set, receives the metrics in Prometheus text format on shutdown.
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

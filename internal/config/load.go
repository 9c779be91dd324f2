package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/errors"
)

// newViperInstance creates a Viper instance with the FORGE_ env prefix,
// key replacer and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (FORGE_* prefix)
//  2. Project config (.forge/config.yaml)
//  3. Global config (~/.forge/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("ai.command", cfg.AI.Command).
		Int("retry.build.max_attempts", cfg.Retry.Build.MaxAttempts).
		Int("retry.task.max_attempts", cfg.Retry.Task.MaxAttempts).
		Str("project.name", cfg.Project.Name).
		Msg("configuration loaded")

	return cfg, nil
}

func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, ok := getGlobalConfigPathIfExists()
	if !ok {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

func getGlobalConfigPathIfExists() (string, bool) {
	globalConfigPath, err := GlobalConfigPath()
	if err != nil {
		return "", false
	}
	if _, err := os.Stat(globalConfigPath); err != nil {
		return "", false
	}
	return globalConfigPath, true
}

func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if _, err := os.Stat(projectConfigPath); err != nil {
		return nil //nolint:nilerr // a missing project config is expected
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths.
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("ai.command", d.AI.Command)
	v.SetDefault("ai.args", d.AI.Args)
	v.SetDefault("ai.timeout", d.AI.Timeout.String())
	v.SetDefault("ai.requests_per_minute", 0)
	v.SetDefault("ai.burst", 0)

	v.SetDefault("retry.build.max_attempts", d.Retry.Build.MaxAttempts)
	v.SetDefault("retry.build.base_delay", d.Retry.Build.BaseDelay.String())
	v.SetDefault("retry.build.max_delay", d.Retry.Build.MaxDelay.String())
	v.SetDefault("retry.task.max_attempts", d.Retry.Task.MaxAttempts)
	v.SetDefault("retry.task.base_delay", d.Retry.Task.BaseDelay.String())
	v.SetDefault("retry.task.max_delay", d.Retry.Task.MaxDelay.String())

	v.SetDefault("planner.template_file", "")

	v.SetDefault("memory.dir", "")
	v.SetDefault("memory.context_entries", d.Memory.ContextEntries)
	v.SetDefault("memory.token_cache_size", d.Memory.TokenCacheSize)
	v.SetDefault("memory.autosave", d.Memory.Autosave)

	v.SetDefault("project.name", d.Project.Name)
	v.SetDefault("project.output_dir", d.Project.OutputDir)

	v.SetDefault("artifacts.backend.file", d.Artifacts.Backend.File)
	v.SetDefault("artifacts.backend.language", d.Artifacts.Backend.Language)
	v.SetDefault("artifacts.frontend.file", d.Artifacts.Frontend.File)
	v.SetDefault("artifacts.frontend.language", d.Artifacts.Frontend.Language)
	v.SetDefault("artifacts.database.file", d.Artifacts.Database.File)
	v.SetDefault("artifacts.database.language", d.Artifacts.Database.Language)

	v.SetDefault("deploy.command", "")
	v.SetDefault("deploy.args", []string{})
	v.SetDefault("deploy.timeout", constants.DefaultDeployTimeout.String())

	v.SetDefault("metrics.textfile", "")
}

// applyOverrides merges non-zero override values into the config.
//
// Boolean fields (memory.autosave) cannot be overridden to false here because
// false is indistinguishable from unset. The CLI sets them directly when the
// flag was changed.
func applyOverrides(cfg, overrides *Config) {
	if overrides.AI.Command != "" {
		cfg.AI.Command = overrides.AI.Command
	}
	if len(overrides.AI.Args) > 0 {
		cfg.AI.Args = overrides.AI.Args
	}
	if overrides.AI.Timeout != 0 {
		cfg.AI.Timeout = overrides.AI.Timeout
	}
	if overrides.Planner.TemplateFile != "" {
		cfg.Planner.TemplateFile = overrides.Planner.TemplateFile
	}
	if overrides.Memory.Dir != "" {
		cfg.Memory.Dir = overrides.Memory.Dir
	}
	if overrides.Project.Name != "" {
		cfg.Project.Name = overrides.Project.Name
	}
	if overrides.Project.OutputDir != "" {
		cfg.Project.OutputDir = filepath.Clean(overrides.Project.OutputDir)
	}
	if overrides.Deploy.Command != "" {
		cfg.Deploy.Command = overrides.Deploy.Command
	}
	if overrides.Metrics.Textfile != "" {
		cfg.Metrics.Textfile = overrides.Metrics.Textfile
	}
}

// viperDecoderOption configures mapstructure to convert duration strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}

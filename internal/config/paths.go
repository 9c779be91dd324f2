package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/errors"
)

// GlobalConfigDir returns the path to the global forge directory, typically ~/.forge.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.ForgeHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the relative path to the project configuration file.
func ProjectConfigPath() string {
	return filepath.Join(constants.ProjectConfigDir, constants.ProjectConfigName)
}

// MemoryDir resolves the directory that holds project snapshots.
func (c *Config) MemoryDir() (string, error) {
	if c.Memory.Dir != "" {
		return c.Memory.Dir, nil
	}
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.MemoryDir), nil
}

// ProjectDir is where the current project's generated files are written.
func (c *Config) ProjectDir() string {
	return filepath.Join(c.Project.OutputDir, c.Project.Name)
}

package constants

// Log file names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.forge/logs/forge.log
	CLILogFileName = "forge.log"
)

// Log rotation limits for the CLI log file.
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 30
	LogCompress   = true
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global configuration file.
	// This file is located in the forge home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigDir is the directory holding project-specific configuration.
	ProjectConfigDir = ".forge"

	// ProjectConfigName is the project-specific configuration file inside ProjectConfigDir.
	ProjectConfigName = "config.yaml"
)

package ai

import (
	"fmt"
	"strings"
)

// CommandInfo describes an external command for error messages.
type CommandInfo struct {
	Name        string // command name as configured
	InstallHint string // what to do when the command is missing
	ErrType     error  // sentinel the error is wrapped with
}

// WrapExecutionError wraps a command failure with the sentinel for its
// capability and the most useful detail available.
func WrapExecutionError(info CommandInfo, err error, stderr []byte) error {
	stderrStr := strings.TrimSpace(string(stderr))

	if strings.Contains(stderrStr, "command not found") ||
		strings.Contains(err.Error(), "executable file not found") {
		return fmt.Errorf("%w: %s not found - %s", info.ErrType, info.Name, info.InstallHint)
	}

	if stderrStr != "" {
		return fmt.Errorf("%w: %s: %s", info.ErrType, info.Name, stderrStr)
	}

	return fmt.Errorf("%w: %s: %s", info.ErrType, info.Name, err.Error())
}

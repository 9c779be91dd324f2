package ai

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandExecutor abstracts command execution for testing.
// The production implementation runs a subprocess; tests substitute a fake.
type CommandExecutor interface {
	// Execute runs the command and returns stdout, stderr, and any error.
	Execute(ctx context.Context, cmd *exec.Cmd) (stdout, stderr []byte, err error)
}

// DefaultExecutor is the production implementation of CommandExecutor.
type DefaultExecutor struct{}

// Execute runs the command and captures its output.
func (e *DefaultExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

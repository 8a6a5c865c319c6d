package services

import (
	"context"
	"errors"
	"os/exec"
)

// Executor abstracts command execution for testability.
type Executor interface {
	// CombinedOutput runs binary with args in dir (empty dir means the
	// process working directory) and returns interleaved stdout/stderr.
	CombinedOutput(ctx context.Context, dir, binary string, args []string) ([]byte, error)
}

// CommandExecutor executes commands with os/exec.
type CommandExecutor struct{}

func (CommandExecutor) CombinedOutput(ctx context.Context, dir, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// ExitCode extracts the process exit code from an execution error.
// Returns false when the error does not carry one (e.g. the binary
// could not be started or the context expired).
func ExitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

package stageproc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mimic/internal/logging"
	"mimic/internal/services"
)

// DefaultTimeout bounds one stage invocation when no timeout is configured.
const DefaultTimeout = 1800 * time.Second

const failureDetailLimit = 500

// Invocation describes one external stage run.
type Invocation struct {
	// Stage names the invocation for logs and failure reasons.
	Stage string
	// Binary is the interpreter or executable, Script its entry point.
	Binary string
	Script string
	// WorkDir is the stage repository; scripts resolve their own assets
	// relative to it.
	WorkDir string
	// Args follow the script path on the command line.
	Args []string
	// OutputPath is the artifact the stage is expected to produce. Used as
	// the success fallback when no result marker is emitted.
	OutputPath string
	Timeout    time.Duration
}

// Runner executes stage invocations.
type Runner struct {
	exec   services.Executor
	logger *slog.Logger
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// NewRunner constructs a stage process runner.
func NewRunner(logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		exec:   services.CommandExecutor{},
		logger: logging.NewComponentLogger(logger, "stageproc"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveScript locates the stage entry script and reports
// services.ErrUnavailable when it cannot be found. Called at adapter
// construction and again by preflight so the daemon fails fast instead of
// queueing unprocessable jobs.
func ResolveScript(repoDir, scriptName string) (string, error) {
	if strings.TrimSpace(repoDir) == "" {
		return "", services.Wrap(services.ErrUnavailable, "", "resolve script", "stage repository directory not configured", nil)
	}
	path := filepath.Join(repoDir, scriptName)
	if _, err := os.Stat(path); err != nil {
		return "", services.Wrap(services.ErrUnavailable, "", "resolve script",
			fmt.Sprintf("stage entry script not found: %s", path), err)
	}
	return path, nil
}

// Run executes the invocation and classifies its outcome. Run never returns
// an error; every failure mode is folded into the Result.
func (r *Runner) Run(ctx context.Context, inv Invocation) Result {
	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	args := make([]string, 0, len(inv.Args)+1)
	args = append(args, inv.Script)
	args = append(args, inv.Args...)

	// Carries the invocation's stage plus the job id annotated upstream.
	logger := logging.WithContext(services.WithStage(ctx, inv.Stage), r.logger)
	logger.Info("stage invocation starting",
		logging.String("script", inv.Script),
		logging.String("output", inv.OutputPath),
		logging.Duration("timeout", timeout),
	)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	output, err := r.exec.CombinedOutput(runCtx, inv.WorkDir, inv.Binary, args)
	elapsed := time.Since(started)

	result := r.classify(runCtx, inv, output, err, timeout)
	if result.OK {
		logger.Info("stage invocation succeeded",
			logging.String("output", result.OutputPath),
			logging.Duration("elapsed", elapsed),
		)
	} else {
		logger.Error("stage invocation failed",
			logging.String("reason", result.Reason),
			logging.Int("exit_code", result.ExitCode),
			logging.Bool("timed_out", result.TimedOut),
			logging.Duration("elapsed", elapsed),
		)
	}
	return result
}

func (r *Runner) classify(runCtx context.Context, inv Invocation, output []byte, err error, timeout time.Duration) Result {
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			result := Failure(fmt.Sprintf("%s timed out after %s", inv.Stage, timeout))
			result.TimedOut = true
			return result
		}
		if code, ok := services.ExitCode(err); ok {
			result := Failure(fmt.Sprintf("%s exited with code %d: %s", inv.Stage, code, outputTail(output, failureDetailLimit)))
			result.ExitCode = code
			return result
		}
		return Failure(fmt.Sprintf("%s could not be started: %v", inv.Stage, err))
	}

	if payload, ok := parseMarker(string(output)); ok {
		if payload.Success {
			path := payload.Output
			if path == "" {
				path = inv.OutputPath
			}
			return Success(path)
		}
		return Failure(fmt.Sprintf("%s reported failure: %s", inv.Stage, outputTail(output, failureDetailLimit)))
	}

	// No marker emitted; existence of the declared output is success.
	if _, statErr := os.Stat(inv.OutputPath); statErr == nil {
		return Success(inv.OutputPath)
	}
	return Failure(fmt.Sprintf("%s output missing: %s", inv.Stage, inv.OutputPath))
}

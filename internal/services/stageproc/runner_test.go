package stageproc_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mimic/internal/logging"
	"mimic/internal/services"
	"mimic/internal/services/stageproc"
	"mimic/internal/testsupport"
)

type stubExecutor struct {
	output []byte
	err    error
	// blockUntilDeadline simulates a process that never finishes.
	blockUntilDeadline bool

	binary string
	dir    string
	args   []string
}

func (s *stubExecutor) CombinedOutput(ctx context.Context, dir, binary string, args []string) ([]byte, error) {
	s.binary = binary
	s.dir = dir
	s.args = args
	if s.blockUntilDeadline {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.output, s.err
}

func newRunner(exec *stubExecutor) *stageproc.Runner {
	return stageproc.NewRunner(logging.NewNop(), stageproc.WithExecutor(exec))
}

func invocation(outputPath string) stageproc.Invocation {
	return stageproc.Invocation{
		Stage:      "reenactment",
		Binary:     "python3",
		Script:     "/repo/run_stage.py",
		WorkDir:    "/repo",
		Args:       []string{"--source", "in.mp4"},
		OutputPath: outputPath,
		Timeout:    time.Second,
	}
}

func TestRunMarkerSuccessIsAuthoritative(t *testing.T) {
	exec := &stubExecutor{output: []byte("noise\n__RESULT_JSON__:{\"success\": true, \"output\": \"/tmp/out.mp4\"}\n")}
	result := newRunner(exec).Run(context.Background(), invocation("/nonexistent/out.mp4"))

	if !result.OK {
		t.Fatalf("expected success, got %#v", result)
	}
	if result.OutputPath != "/tmp/out.mp4" {
		t.Fatalf("expected marker output path, got %q", result.OutputPath)
	}
	if exec.args[0] != "/repo/run_stage.py" {
		t.Fatalf("expected script as first arg, got %v", exec.args)
	}
	if exec.dir != "/repo" {
		t.Fatalf("expected repo working directory, got %q", exec.dir)
	}
}

func TestRunMarkerFailureBeatsExistingOutput(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "out.mp4")
	testsupport.WriteFile(t, outputPath, 16)

	exec := &stubExecutor{output: []byte("__RESULT_JSON__:{\"success\": false}\n")}
	result := newRunner(exec).Run(context.Background(), invocation(outputPath))

	if result.OK {
		t.Fatal("marker failure must win even when the output file exists")
	}
	if !strings.Contains(result.Reason, "reported failure") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestRunFallsBackToOutputExistence(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "out.mp4")
	testsupport.WriteFile(t, outputPath, 16)

	exec := &stubExecutor{output: []byte("no marker here")}
	result := newRunner(exec).Run(context.Background(), invocation(outputPath))

	if !result.OK || result.OutputPath != outputPath {
		t.Fatalf("expected fallback success, got %#v", result)
	}
}

func TestRunMissingOutputWithoutMarkerFails(t *testing.T) {
	exec := &stubExecutor{output: []byte("chatter only")}
	result := newRunner(exec).Run(context.Background(), invocation("/nonexistent/out.mp4"))

	if result.OK {
		t.Fatal("expected failure when no marker and no output file")
	}
	if !strings.Contains(result.Reason, "output missing") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestRunTimeoutClassification(t *testing.T) {
	exec := &stubExecutor{blockUntilDeadline: true}
	inv := invocation("/nonexistent/out.mp4")
	inv.Timeout = 20 * time.Millisecond

	result := newRunner(exec).Run(context.Background(), inv)

	if result.OK || !result.TimedOut {
		t.Fatalf("expected timed-out failure, got %#v", result)
	}
	if !strings.Contains(result.Reason, "timed out") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestRunStartFailure(t *testing.T) {
	exec := &stubExecutor{err: errors.New("executable file not found")}
	result := newRunner(exec).Run(context.Background(), invocation("/nonexistent/out.mp4"))

	if result.OK {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Reason, "could not be started") {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestResolveScriptMissing(t *testing.T) {
	if _, err := stageproc.ResolveScript(t.TempDir(), "run_stage.py"); !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := stageproc.ResolveScript("", "run_stage.py"); !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for empty repo dir, got %v", err)
	}
}

func TestResolveScriptFound(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "run_stage.py"), 8)

	path, err := stageproc.ResolveScript(dir, "run_stage.py")
	if err != nil {
		t.Fatalf("ResolveScript failed: %v", err)
	}
	if path != filepath.Join(dir, "run_stage.py") {
		t.Fatalf("unexpected path %q", path)
	}
}

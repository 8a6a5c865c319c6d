package reenact_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mimic/internal/logging"
	"mimic/internal/services"
	"mimic/internal/services/reenact"
	"mimic/internal/services/stageproc"
	"mimic/internal/testsupport"
)

type stubExecutor struct {
	binary string
	dir    string
	args   []string
}

func (s *stubExecutor) CombinedOutput(ctx context.Context, dir, binary string, args []string) ([]byte, error) {
	s.binary = binary
	s.dir = dir
	s.args = args
	return []byte("__RESULT_JSON__:{\"success\": true, \"output\": \"/tmp/out.mp4\"}"), nil
}

func TestNewFailsWithoutScript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := reenact.New(cfg.Reenactment, logging.NewNop()); !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGenerateBuildsInvocation(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStageScripts())
	exec := &stubExecutor{}

	client, err := reenact.New(cfg.Reenactment, logging.NewNop(), stageproc.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result := client.Generate(context.Background(), "/in/video.mp4", "/identities/alice/face.jpg", "/tmp/out.mp4")
	if !result.OK {
		t.Fatalf("expected success, got %#v", result)
	}

	if exec.binary != cfg.Reenactment.Python {
		t.Fatalf("expected python binary %q, got %q", cfg.Reenactment.Python, exec.binary)
	}
	if exec.dir != cfg.Reenactment.RepoDir {
		t.Fatalf("expected repo working dir, got %q", exec.dir)
	}
	if exec.args[0] != client.ScriptPath() {
		t.Fatalf("expected script first, got %v", exec.args[0])
	}

	joined := strings.Join(exec.args, " ")
	for _, want := range []string{
		"--source /in/video.mp4",
		"--reference /identities/alice/face.jpg",
		"--output /tmp/out.mp4",
		"--width 512",
		"--height 512",
		"--steps 25",
		"--guidance 2.5",
		"--seed 42",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args, got %q", want, joined)
		}
	}
}

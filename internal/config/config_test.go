package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mimic/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.Workflow.ExecutionMode != config.ExecutionModeSequential {
		t.Fatalf("expected sequential default, got %q", cfg.Workflow.ExecutionMode)
	}
	if cfg.Reenactment.Steps != 25 || cfg.Reenactment.GuidanceScale != 2.5 {
		t.Fatalf("unexpected reenactment tuning defaults: %+v", cfg.Reenactment)
	}
	if cfg.Voice.DiffusionSteps != 30 || cfg.Voice.LengthAdjust != 1.0 {
		t.Fatalf("unexpected voice tuning defaults: %+v", cfg.Voice)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("file does not exist, exists should be false")
	}
	if resolved != path {
		t.Fatalf("resolved path %q, want %q", resolved, path)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8385" {
		t.Fatalf("unexpected default bind %q", cfg.Paths.APIBind)
	}
}

func TestLoadOverridesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/data"
identities_dir = "~/mimic-identities"

[workflow]
execution_mode = "Concurrent"
queue_poll_interval = 1

[reenactment]
repo_dir = "` + dir + `/xnemo"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Paths.DataDir != filepath.Join(dir, "data") {
		t.Fatalf("data dir %q", cfg.Paths.DataDir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir: %v", err)
	}
	if cfg.Paths.IdentitiesDir != filepath.Join(home, "mimic-identities") {
		t.Fatalf("identities dir %q was not expanded", cfg.Paths.IdentitiesDir)
	}

	// Mode is case-folded during normalization.
	if cfg.Workflow.ExecutionMode != config.ExecutionModeConcurrent {
		t.Fatalf("execution mode %q", cfg.Workflow.ExecutionMode)
	}
	if cfg.Workflow.QueuePollInterval != 1 {
		t.Fatalf("poll interval %d", cfg.Workflow.QueuePollInterval)
	}
	// Untouched sections keep defaults.
	if cfg.Voice.DiffusionSteps != 30 {
		t.Fatalf("voice defaults lost: %+v", cfg.Voice)
	}
}

func TestLoadDefaultsWeightsDirToRepoSubdir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[reenactment]
repo_dir = "` + dir + `/xnemo"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := filepath.Join(dir, "xnemo", "pretrained_weights")
	if cfg.Reenactment.WeightsDir != want {
		t.Fatalf("weights dir %q, want %q", cfg.Reenactment.WeightsDir, want)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = ""
	cfg.Workflow.ExecutionMode = "parallel"
	cfg.Voice.TimeoutSecs = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	for _, want := range []string{
		"paths.data_dir must be set",
		"workflow.execution_mode",
		"voice.timeout must be positive",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[workflow]
queue_poll_interval = -3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected Load to reject negative poll interval")
	}
}

func TestEnsureDirectoriesCreatesLayout(t *testing.T) {
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.IdentitiesDir = filepath.Join(base, "identities")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{
		cfg.UploadsDir(),
		cfg.TempDir(),
		cfg.OutputDir(),
		cfg.Paths.LogDir,
		cfg.Paths.IdentitiesDir,
	} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}
}

func TestWriteSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample file should exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}

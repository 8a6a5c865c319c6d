// Package testsupport provides shared fixtures for package tests: per-test
// configs rooted in temp directories, queue stores with cleanup, identity
// fixtures, and file helpers. No test spawns a real external process.
package testsupport

import (
	"path/filepath"
	"testing"

	"mimic/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.IdentitiesDir = filepath.Join(base, "identities")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Workflow.QueuePollInterval = 1
	cfgVal.Workflow.ErrorRetryInterval = 1
	cfgVal.Reenactment.RepoDir = filepath.Join(base, "xnemo")
	cfgVal.Voice.RepoDir = filepath.Join(base, "seedvc")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithExecutionMode sets the pipeline execution mode on the test config.
func WithExecutionMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.ExecutionMode = mode
	}
}

// WithStageScripts writes the stage entry scripts under the configured repo
// directories so adapter construction succeeds.
func WithStageScripts() ConfigOption {
	return func(b *configBuilder) {
		WriteFile(b.t, filepath.Join(b.cfg.Reenactment.RepoDir, "run_xnemo.py"), 1)
		WriteFile(b.t, filepath.Join(b.cfg.Voice.RepoDir, "run_seedvc.py"), 1)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

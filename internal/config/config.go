package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	// DataDir holds the uploads/, temp/, and output/ subdirectories.
	DataDir       string `toml:"data_dir"`
	IdentitiesDir string `toml:"identities_dir"`
	LogDir        string `toml:"log_dir"`
	APIBind       string `toml:"api_bind"`
}

// Workflow contains dispatcher timing and execution-mode configuration.
type Workflow struct {
	QueuePollInterval  int    `toml:"queue_poll_interval"`
	ErrorRetryInterval int    `toml:"error_retry_interval"`
	ExecutionMode      string `toml:"execution_mode"`
}

// Reenactment configures the visual reenactment stage.
type Reenactment struct {
	RepoDir       string  `toml:"repo_dir"`
	WeightsDir    string  `toml:"weights_dir"`
	Python        string  `toml:"python"`
	Device        string  `toml:"device"`
	DType         string  `toml:"dtype"`
	Width         int     `toml:"width"`
	Height        int     `toml:"height"`
	Steps         int     `toml:"steps"`
	GuidanceScale float64 `toml:"guidance_scale"`
	Seed          int     `toml:"seed"`
	TimeoutSecs   int     `toml:"timeout"`
}

// Voice configures the voice conversion stage.
type Voice struct {
	RepoDir                string  `toml:"repo_dir"`
	Python                 string  `toml:"python"`
	Device                 string  `toml:"device"`
	DType                  string  `toml:"dtype"`
	DiffusionSteps         int     `toml:"diffusion_steps"`
	LengthAdjust           float64 `toml:"length_adjust"`
	IntelligibilityCFGRate float64 `toml:"intelligibility_cfg_rate"`
	SimilarityCFGRate      float64 `toml:"similarity_cfg_rate"`
	Seed                   int     `toml:"seed"`
	TimeoutSecs            int     `toml:"timeout"`
}

// FFmpeg configures audio extraction and muxing.
type FFmpeg struct {
	Binary string `toml:"binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Workflow    Workflow    `toml:"workflow"`
	Reenactment Reenactment `toml:"reenactment"`
	Voice       Voice       `toml:"voice"`
	FFmpeg      FFmpeg      `toml:"ffmpeg"`
	Logging     Logging     `toml:"logging"`
}

// ExecutionModeSequential runs Stage A then Stage B; required when the
// accelerator cannot host both models at once.
const ExecutionModeSequential = "sequential"

// ExecutionModeConcurrent overlaps Stage A and Stage B within one job.
const ExecutionModeConcurrent = "concurrent"

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mimic/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path; the third reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		def, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = def
	} else {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		path = expanded
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return path, true, nil
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// UploadsDir returns the directory user videos are uploaded to.
func (c *Config) UploadsDir() string { return filepath.Join(c.Paths.DataDir, "uploads") }

// TempDir returns the directory intermediate stage artifacts are written to.
// Contents are retained across jobs for diagnosis; retention is external.
func (c *Config) TempDir() string { return filepath.Join(c.Paths.DataDir, "temp") }

// OutputDir returns the directory final muxed artifacts are written to.
func (c *Config) OutputDir() string { return filepath.Join(c.Paths.DataDir, "output") }

// EnsureDirectories creates all directories the daemon writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.UploadsDir(),
		c.TempDir(),
		c.OutputDir(),
		c.Paths.LogDir,
		c.Paths.IdentitiesDir,
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

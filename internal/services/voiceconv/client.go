package voiceconv

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"mimic/internal/config"
	"mimic/internal/services/stageproc"
)

// StageName identifies this stage in progress reporting and failure
// aggregation.
const StageName = "voice conversion"

const scriptName = "run_seedvc.py"

// Client invokes the voice conversion stage.
type Client struct {
	cfg    config.Voice
	script string
	runner *stageproc.Runner
}

// New constructs the adapter, resolving the stage entry script. Returns an
// error carrying services.ErrUnavailable when the script cannot be located.
func New(cfg config.Voice, logger *slog.Logger, opts ...stageproc.Option) (*Client, error) {
	script, err := stageproc.ResolveScript(cfg.RepoDir, scriptName)
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		script: script,
		runner: stageproc.NewRunner(logger, opts...),
	}, nil
}

// ScriptPath returns the resolved stage entry script, used by preflight.
func (c *Client) ScriptPath() string { return c.script }

// ResolveScript locates the stage entry script under repoDir without
// constructing a client. Preflight uses it to report adapter availability.
func ResolveScript(repoDir string) (string, error) {
	return stageproc.ResolveScript(repoDir, scriptName)
}

// Convert re-voices sourceAudio to match referenceAudio. The result is never
// an error; failures are classified in the returned stage result.
func (c *Client) Convert(ctx context.Context, sourceAudio, referenceAudio, outputPath string) stageproc.Result {
	args := []string{
		"--source", sourceAudio,
		"--reference", referenceAudio,
		"--output", outputPath,
		"--diffusion-steps", strconv.Itoa(c.cfg.DiffusionSteps),
		"--length-adjust", strconv.FormatFloat(c.cfg.LengthAdjust, 'f', -1, 64),
		"--intelligibility-cfg-rate", strconv.FormatFloat(c.cfg.IntelligibilityCFGRate, 'f', -1, 64),
		"--similarity-cfg-rate", strconv.FormatFloat(c.cfg.SimilarityCFGRate, 'f', -1, 64),
		"--seed", strconv.Itoa(c.cfg.Seed),
		"--device", c.cfg.Device,
		"--dtype", c.cfg.DType,
	}

	return c.runner.Run(ctx, stageproc.Invocation{
		Stage:      StageName,
		Binary:     c.cfg.Python,
		Script:     c.script,
		WorkDir:    c.cfg.RepoDir,
		Args:       args,
		OutputPath: outputPath,
		Timeout:    time.Duration(c.cfg.TimeoutSecs) * time.Second,
	})
}

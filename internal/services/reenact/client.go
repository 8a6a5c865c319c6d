package reenact

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"mimic/internal/config"
	"mimic/internal/services/stageproc"
)

// StageName identifies this stage in progress reporting and failure
// aggregation.
const StageName = "reenactment"

const scriptName = "run_xnemo.py"

// Client invokes the reenactment stage.
type Client struct {
	cfg    config.Reenactment
	script string
	runner *stageproc.Runner
}

// New constructs the adapter, resolving the stage entry script. Returns an
// error carrying services.ErrUnavailable when the script cannot be located.
func New(cfg config.Reenactment, logger *slog.Logger, opts ...stageproc.Option) (*Client, error) {
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

// Generate produces a reenacted video: sourceVideo drives motion,
// referenceImage provides the face. The result is never an error; failures
// are classified in the returned stage result.
func (c *Client) Generate(ctx context.Context, sourceVideo, referenceImage, outputPath string) stageproc.Result {
	weights := c.cfg.WeightsDir
	args := []string{
		"--source", sourceVideo,
		"--reference", referenceImage,
		"--output", outputPath,
		"--pretrained-model", filepath.Join(weights, "sd-image-variations-diffusers"),
		"--vae-path", filepath.Join(weights, "stable-video-diffusion-img2vid-xt/vae"),
		"--denoising-unet", filepath.Join(weights, "xnemo_denoising_unet.pth"),
		"--temporal-module", filepath.Join(weights, "xnemo_temporal_module.pth"),
		"--width", strconv.Itoa(c.cfg.Width),
		"--height", strconv.Itoa(c.cfg.Height),
		"--steps", strconv.Itoa(c.cfg.Steps),
		"--guidance", strconv.FormatFloat(c.cfg.GuidanceScale, 'f', -1, 64),
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

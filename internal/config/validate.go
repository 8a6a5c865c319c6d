package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.IdentitiesDir) == "" {
		problems = append(problems, "paths.identities_dir must be set")
	}
	if c.Workflow.QueuePollInterval <= 0 {
		problems = append(problems, "workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		problems = append(problems, "workflow.error_retry_interval must be positive")
	}
	switch c.Workflow.ExecutionMode {
	case ExecutionModeSequential, ExecutionModeConcurrent:
	default:
		problems = append(problems, fmt.Sprintf("workflow.execution_mode must be %q or %q", ExecutionModeSequential, ExecutionModeConcurrent))
	}
	if c.Reenactment.TimeoutSecs <= 0 {
		problems = append(problems, "reenactment.timeout must be positive")
	}
	if c.Voice.TimeoutSecs <= 0 {
		problems = append(problems, "voice.timeout must be positive")
	}
	if c.Reenactment.Steps <= 0 {
		problems = append(problems, "reenactment.steps must be positive")
	}
	if c.Voice.DiffusionSteps <= 0 {
		problems = append(problems, "voice.diffusion_steps must be positive")
	}
	if strings.TrimSpace(c.FFmpeg.Binary) == "" {
		problems = append(problems, "ffmpeg.binary must be set")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

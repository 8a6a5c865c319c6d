package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	pathFields := []*string{
		&c.Paths.DataDir,
		&c.Paths.IdentitiesDir,
		&c.Paths.LogDir,
		&c.Reenactment.RepoDir,
		&c.Reenactment.WeightsDir,
		&c.Voice.RepoDir,
	}
	for _, field := range pathFields {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if c.Reenactment.WeightsDir == "" && c.Reenactment.RepoDir != "" {
		c.Reenactment.WeightsDir = filepath.Join(c.Reenactment.RepoDir, "pretrained_weights")
	}
	c.Workflow.ExecutionMode = strings.ToLower(strings.TrimSpace(c.Workflow.ExecutionMode))
	return nil
}

// ExpandPath resolves ~ prefixes and makes the path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", trimmed, err)
	}
	return abs, nil
}

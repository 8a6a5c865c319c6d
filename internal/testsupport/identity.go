package testsupport

import (
	"path/filepath"
	"testing"

	"mimic/internal/config"
)

// SeedIdentity creates an identity directory with the given images and one
// voice sample under the config's identities dir, returning the identity ID.
func SeedIdentity(t testing.TB, cfg *config.Config, id string, images ...string) string {
	t.Helper()

	if len(images) == 0 {
		images = []string{"face.jpg"}
	}
	dir := filepath.Join(cfg.Paths.IdentitiesDir, id)
	for _, image := range images {
		WriteFile(t, filepath.Join(dir, image), 64)
	}
	WriteFile(t, filepath.Join(dir, "voice.wav"), 64)
	return id
}

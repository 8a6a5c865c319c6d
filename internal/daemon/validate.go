package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mimic/internal/identity"
	"mimic/internal/queue"
)

// videoExtensions are the upload formats the pipeline accepts.
var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".avi":  {},
	".mkv":  {},
	".webm": {},
}

// submissionValidator checks a job request against the identity catalog and
// the uploads directory. The store calls it inside Enqueue so invalid
// submissions never create a row.
type submissionValidator struct {
	catalog    *identity.Catalog
	uploadsDir string
}

func newSubmissionValidator(catalog *identity.Catalog, uploadsDir string) *submissionValidator {
	return &submissionValidator{catalog: catalog, uploadsDir: uploadsDir}
}

func (v *submissionValidator) ValidateRequest(req queue.NewJobRequest) error {
	if strings.TrimSpace(req.IdentityID) == "" {
		return fmt.Errorf("identity is required")
	}
	if strings.TrimSpace(req.SourceVideo) == "" {
		return fmt.Errorf("source video is required")
	}
	// Reject traversal in the client-supplied filename outright.
	if filepath.Base(req.SourceVideo) != req.SourceVideo {
		return fmt.Errorf("source video %q must be a bare filename", req.SourceVideo)
	}

	id, err := v.catalog.Get(req.IdentityID)
	if err != nil {
		return fmt.Errorf("unknown identity %q", req.IdentityID)
	}
	if strings.TrimSpace(req.IdentityImage) == "" {
		return fmt.Errorf("identity image is required")
	}
	if !id.HasImage(req.IdentityImage) {
		return fmt.Errorf("image %q does not belong to identity %q", req.IdentityImage, req.IdentityID)
	}

	ext := strings.ToLower(filepath.Ext(req.SourceVideo))
	if _, ok := videoExtensions[ext]; !ok {
		return fmt.Errorf("unsupported video format %q", ext)
	}
	if _, err := os.Stat(filepath.Join(v.uploadsDir, req.SourceVideo)); err != nil {
		return fmt.Errorf("video %q not found, upload it first", req.SourceVideo)
	}
	return nil
}

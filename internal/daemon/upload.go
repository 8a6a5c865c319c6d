package daemon

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mimic/internal/api"
	"mimic/internal/logging"
)

// maxUploadBytes caps a single video upload.
const maxUploadBytes = 2 << 30

// handleUpload stores a client video under a server-assigned UUID filename
// and returns that filename for use in a job submission.
func (s *apiServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".mp4"
	}
	if _, ok := videoExtensions[ext]; !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported video format %q", ext))
		return
	}

	filename := uuid.NewString() + ext
	destPath := filepath.Join(s.daemon.cfg.UploadsDir(), filename)
	dest, err := os.Create(destPath)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	written, err := io.Copy(dest, file)
	if closeErr := dest.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(destPath)
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	s.log().Info("video uploaded",
		logging.String("filename", filename),
		logging.Int64("bytes", written))
	s.writeJSON(w, http.StatusOK, api.UploadResponse{Filename: filename})
}

package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mimic/internal/logging"
	"mimic/internal/services"
)

// voiceSampleRate is the sample rate the voice conversion stage expects.
const voiceSampleRate = "22050"

// AudioExtractor produces a voice-stage-ready audio file from a video.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
}

// Combiner muxes a video stream and an audio stream into one final artifact.
type Combiner interface {
	Combine(ctx context.Context, videoPath, audioPath, outputPath string) error
}

// FFmpeg implements AudioExtractor and Combiner by shelling out to ffmpeg.
type FFmpeg struct {
	binary string
	exec   services.Executor
	logger *slog.Logger
}

// Option configures the FFmpeg wrapper.
type Option func(*FFmpeg)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(f *FFmpeg) {
		if exec != nil {
			f.exec = exec
		}
	}
}

// NewFFmpeg constructs the ffmpeg wrapper.
func NewFFmpeg(binary string, logger *slog.Logger, opts ...Option) *FFmpeg {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	f := &FFmpeg{
		binary: binary,
		exec:   services.CommandExecutor{},
		logger: logging.NewComponentLogger(logger, "ffmpeg"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Binary returns the configured ffmpeg command, used by preflight.
func (f *FFmpeg) Binary() string { return f.binary }

// ExtractAudio writes the video's audio track as mono 16-bit PCM at the
// voice stage's sample rate.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	if err := os.MkdirAll(filepath.Dir(audioPath), 0o755); err != nil {
		return fmt.Errorf("ensure audio directory: %w", err)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", voiceSampleRate,
		"-ac", "1",
		audioPath,
	}
	output, err := f.exec.CombinedOutput(ctx, "", f.binary, args)
	if err != nil {
		return fmt.Errorf("ffmpeg audio extraction: %w: %s", err, strings.TrimSpace(string(output)))
	}
	f.logger.Debug("audio extracted", logging.String("audio", audioPath))
	return nil
}

// Combine muxes the reenacted video with the converted audio. The video
// stream is copied; audio is re-encoded to AAC and the output is trimmed to
// the shorter stream.
func (f *FFmpeg) Combine(ctx context.Context, videoPath, audioPath, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outputPath,
	}
	output, err := f.exec.CombinedOutput(ctx, "", f.binary, args)
	if err != nil {
		return services.Wrap(services.ErrCombine, "", "ffmpeg mux",
			strings.TrimSpace(string(output)), err)
	}
	f.logger.Debug("streams combined", logging.String("output", outputPath))
	return nil
}

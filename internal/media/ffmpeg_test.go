package media_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"mimic/internal/logging"
	"mimic/internal/media"
	"mimic/internal/services"
)

type stubExecutor struct {
	output []byte
	err    error

	binary string
	args   []string
}

func (s *stubExecutor) CombinedOutput(ctx context.Context, dir, binary string, args []string) ([]byte, error) {
	s.binary = binary
	s.args = args
	return s.output, s.err
}

func TestExtractAudioArgs(t *testing.T) {
	exec := &stubExecutor{}
	ffmpeg := media.NewFFmpeg("ffmpeg", logging.NewNop(), media.WithExecutor(exec))

	audioPath := filepath.Join(t.TempDir(), "audio", "job_source_audio.wav")
	if err := ffmpeg.ExtractAudio(context.Background(), "/in/video.mp4", audioPath); err != nil {
		t.Fatalf("ExtractAudio failed: %v", err)
	}

	joined := strings.Join(exec.args, " ")
	for _, want := range []string{
		"-i /in/video.mp4",
		"-vn",
		"-acodec pcm_s16le",
		"-ar 22050",
		"-ac 1",
		audioPath,
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args, got %q", want, joined)
		}
	}
	if exec.binary != "ffmpeg" {
		t.Fatalf("unexpected binary %q", exec.binary)
	}
}

func TestCombineArgs(t *testing.T) {
	exec := &stubExecutor{}
	ffmpeg := media.NewFFmpeg("/usr/local/bin/ffmpeg", logging.NewNop(), media.WithExecutor(exec))

	outputPath := filepath.Join(t.TempDir(), "out", "final.mp4")
	if err := ffmpeg.Combine(context.Background(), "/tmp/reenact.mp4", "/tmp/voice.wav", outputPath); err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	joined := strings.Join(exec.args, " ")
	for _, want := range []string{
		"-i /tmp/reenact.mp4",
		"-i /tmp/voice.wav",
		"-c:v copy",
		"-c:a aac",
		"-map 0:v:0",
		"-map 1:a:0",
		"-shortest",
		outputPath,
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args, got %q", want, joined)
		}
	}
}

func TestCombineFailureCarriesCombineMarker(t *testing.T) {
	exec := &stubExecutor{err: errors.New("exit status 1"), output: []byte("muxer error")}
	ffmpeg := media.NewFFmpeg("ffmpeg", logging.NewNop(), media.WithExecutor(exec))

	err := ffmpeg.Combine(context.Background(), "/tmp/a.mp4", "/tmp/b.wav", filepath.Join(t.TempDir(), "final.mp4"))
	if !errors.Is(err, services.ErrCombine) {
		t.Fatalf("expected ErrCombine, got %v", err)
	}
	if !strings.Contains(err.Error(), "muxer error") {
		t.Fatalf("expected process output in error, got %q", err.Error())
	}
}

func TestExtractAudioFailure(t *testing.T) {
	exec := &stubExecutor{err: errors.New("exit status 1"), output: []byte("no audio stream")}
	ffmpeg := media.NewFFmpeg("ffmpeg", logging.NewNop(), media.WithExecutor(exec))

	err := ffmpeg.ExtractAudio(context.Background(), "/in/video.mp4", filepath.Join(t.TempDir(), "a.wav"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "no audio stream") {
		t.Fatalf("expected process output in error, got %q", err.Error())
	}
}

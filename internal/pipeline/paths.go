package pipeline

import (
	"path/filepath"
)

// JobPaths holds the per-job filesystem locations used by the pipeline.
// All intermediate paths are derived from the job ID so concurrent jobs
// never collide and a failed job's artifacts can be located after the fact.
type JobPaths struct {
	SourceVideo   string
	ReenactOutput string
	SourceAudio   string
	VoiceOutput   string
	FinalOutput   string
}

func buildJobPaths(uploadsDir, tempDir, outputDir, jobID, sourceVideo string) JobPaths {
	return JobPaths{
		SourceVideo:   filepath.Join(uploadsDir, sourceVideo),
		ReenactOutput: filepath.Join(tempDir, jobID+"_reenact.mp4"),
		SourceAudio:   filepath.Join(tempDir, jobID+"_source_audio.wav"),
		VoiceOutput:   filepath.Join(tempDir, jobID+"_voice.wav"),
		FinalOutput:   filepath.Join(outputDir, jobID+".mp4"),
	}
}

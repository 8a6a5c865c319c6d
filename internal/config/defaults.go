package config

const (
	defaultDataDir            = "~/.local/share/mimic/data"
	defaultIdentitiesDir      = "~/.local/share/mimic/identities"
	defaultLogDir             = "~/.local/share/mimic/logs"
	defaultAPIBind            = "127.0.0.1:8385"
	defaultQueuePollInterval  = 2
	defaultErrorRetryInterval = 5
	defaultReenactRepoDir     = "~/tools/x-nemo-inference"
	defaultVoiceRepoDir       = "~/tools/seed-vc"
	defaultPython             = "python"
	defaultDevice             = "cuda"
	defaultDType              = "fp16"
	defaultStageTimeoutSecs   = 1800
	defaultFFmpegBinary       = "ffmpeg"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults. Stage tuning
// values mirror the upstream model defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:       defaultDataDir,
			IdentitiesDir: defaultIdentitiesDir,
			LogDir:        defaultLogDir,
			APIBind:       defaultAPIBind,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			ExecutionMode:      ExecutionModeSequential,
		},
		Reenactment: Reenactment{
			RepoDir:       defaultReenactRepoDir,
			Python:        defaultPython,
			Device:        defaultDevice,
			DType:         defaultDType,
			Width:         512,
			Height:        512,
			Steps:         25,
			GuidanceScale: 2.5,
			Seed:          42,
			TimeoutSecs:   defaultStageTimeoutSecs,
		},
		Voice: Voice{
			RepoDir:                defaultVoiceRepoDir,
			Python:                 defaultPython,
			Device:                 defaultDevice,
			DType:                  defaultDType,
			DiffusionSteps:         30,
			LengthAdjust:           1.0,
			IntelligibilityCFGRate: 0.7,
			SimilarityCFGRate:      0.7,
			Seed:                   42,
			TimeoutSecs:            defaultStageTimeoutSecs,
		},
		FFmpeg: FFmpeg{
			Binary: defaultFFmpegBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

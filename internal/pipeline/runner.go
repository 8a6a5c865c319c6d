package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"mimic/internal/config"
	"mimic/internal/logging"
	"mimic/internal/media"
	"mimic/internal/queue"
	"mimic/internal/services"
	"mimic/internal/services/reenact"
	"mimic/internal/services/stageproc"
	"mimic/internal/services/voiceconv"
)

// Progress checkpoints reported during a run. The store's monotonic guard
// makes out-of-order reports in concurrent mode harmless.
const (
	ProgressClaimed        = 5
	ProgressValidated      = 10
	ProgressReenactDone    = 50
	ProgressVoiceDone      = 70
	ProgressStagesComplete = 85
	ProgressCombined       = 95
)

// ProgressFunc receives checkpoint updates while a job runs. Implementations
// must tolerate being called from multiple goroutines in concurrent mode.
type ProgressFunc = func(progress int)

// Reenactor produces the identity-transferred video for a job.
type Reenactor interface {
	Generate(ctx context.Context, sourceVideo, referenceImage, outputPath string) stageproc.Result
}

// VoiceConverter produces the identity-matched audio track for a job.
type VoiceConverter interface {
	Convert(ctx context.Context, sourceAudio, referenceAudio, outputPath string) stageproc.Result
}

// AssetResolver locates an identity's reference assets on disk.
// *identity.Catalog satisfies it.
type AssetResolver interface {
	ResolveImagePath(identityID, image string) (string, error)
	ResolveAudioPath(identityID string) (string, error)
}

// Runner executes the full transformation pipeline for one claimed job.
type Runner struct {
	cfg       *config.Config
	resolver  AssetResolver
	reenactor Reenactor
	voice     VoiceConverter
	extractor media.AudioExtractor
	combiner  media.Combiner
	logger    *slog.Logger
}

func NewRunner(
	cfg *config.Config,
	resolver AssetResolver,
	reenactor Reenactor,
	voice VoiceConverter,
	extractor media.AudioExtractor,
	combiner media.Combiner,
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		resolver:  resolver,
		reenactor: reenactor,
		voice:     voice,
		extractor: extractor,
		combiner:  combiner,
		logger:    logger.With(logging.String(logging.FieldComponent, "pipeline")),
	}
}

// Process runs both stages and the combine step for job. It returns the final
// output path on success. Any returned error is terminal for the job; the
// caller records err.Error() as the job's failure detail.
func (r *Runner) Process(ctx context.Context, job *queue.Job, report ProgressFunc) (string, error) {
	if report == nil {
		report = func(int) {}
	}
	ctx = services.WithJobID(ctx, job.ID)
	logger := r.logger.With(logging.String(logging.FieldJobID, job.ID))

	report(ProgressClaimed)

	paths, err := r.resolveInputs(job)
	if err != nil {
		return "", err
	}
	report(ProgressValidated)

	logger.Info("pipeline started",
		logging.String("identity", job.IdentityID),
		logging.String("mode", r.cfg.Workflow.ExecutionMode),
		logging.String("source", paths.SourceVideo))

	imagePath, err := r.resolver.ResolveImagePath(job.IdentityID, job.IdentityImage)
	if err != nil {
		return "", err
	}
	audioPath, err := r.resolver.ResolveAudioPath(job.IdentityID)
	if err != nil {
		return "", err
	}

	switch r.cfg.Workflow.ExecutionMode {
	case config.ExecutionModeConcurrent:
		err = r.runConcurrent(ctx, paths, imagePath, audioPath, report)
	default:
		err = r.runSequential(ctx, paths, imagePath, audioPath, report)
	}
	if err != nil {
		return "", err
	}
	report(ProgressStagesComplete)

	if err := r.combiner.Combine(ctx, paths.ReenactOutput, paths.VoiceOutput, paths.FinalOutput); err != nil {
		return "", err
	}
	report(ProgressCombined)

	logger.Info("pipeline completed",
		logging.String("output", paths.FinalOutput),
		logging.String("temp_reenact", paths.ReenactOutput),
		logging.String("temp_voice", paths.VoiceOutput))
	return paths.FinalOutput, nil
}

// resolveInputs derives the job's filesystem paths and verifies the source
// video still exists. The upload can disappear between enqueue and claim.
func (r *Runner) resolveInputs(job *queue.Job) (JobPaths, error) {
	paths := buildJobPaths(r.cfg.UploadsDir(), r.cfg.TempDir(), r.cfg.OutputDir(), job.ID, job.SourceVideo)
	if _, err := os.Stat(paths.SourceVideo); err != nil {
		return JobPaths{}, services.Wrap(services.ErrInvalidInput, "", "",
			fmt.Sprintf("source video %s not found", job.SourceVideo), err)
	}
	return paths, nil
}

func (r *Runner) runSequential(ctx context.Context, paths JobPaths, imagePath, audioPath string, report ProgressFunc) error {
	res := r.reenactor.Generate(services.WithStage(ctx, reenact.StageName), paths.SourceVideo, imagePath, paths.ReenactOutput)
	if !res.OK {
		return stageError(res)
	}
	report(ProgressReenactDone)

	// Sequential mode skips the per-stage voice checkpoint; the caller's
	// stages-complete report lands immediately after this returns.
	return r.runVoiceStage(ctx, paths, audioPath)
}

// stageFailure captures one stage's failure for deterministic aggregation.
type stageFailure struct {
	reason   string
	timedOut bool
}

// runConcurrent overlaps the two stages on dedicated goroutines and waits
// for both, reporting each stage's checkpoint as it finishes. Both stages
// always run to completion so a fast failure in one never hides the other's
// outcome.
func (r *Runner) runConcurrent(ctx context.Context, paths JobPaths, imagePath, audioPath string, report ProgressFunc) error {
	var (
		wg             sync.WaitGroup
		reenactFailure *stageFailure
		voiceFailure   *stageFailure
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		res := r.reenactor.Generate(services.WithStage(ctx, reenact.StageName), paths.SourceVideo, imagePath, paths.ReenactOutput)
		if !res.OK {
			reenactFailure = &stageFailure{reason: res.Reason, timedOut: res.TimedOut}
			return
		}
		report(ProgressReenactDone)
	}()
	go func() {
		defer wg.Done()
		if err := r.runVoiceStage(ctx, paths, audioPath); err != nil {
			voiceFailure = &stageFailure{reason: services.Detail(err), timedOut: services.IsTimeout(err)}
			return
		}
		report(ProgressVoiceDone)
	}()
	wg.Wait()

	// Reenactment always leads the aggregate so the failure detail is
	// deterministic no matter which stage finished first.
	return aggregateStageFailures(reenactFailure, voiceFailure)
}

// runVoiceStage extracts the source audio track and converts it. Extraction
// failures count as voice stage failures.
func (r *Runner) runVoiceStage(ctx context.Context, paths JobPaths, audioPath string) error {
	ctx = services.WithStage(ctx, voiceconv.StageName)
	if err := r.extractor.ExtractAudio(ctx, paths.SourceVideo, paths.SourceAudio); err != nil {
		return services.Wrap(services.ErrStage, voiceconv.StageName, "extract audio", "", err)
	}
	res := r.voice.Convert(ctx, paths.SourceAudio, audioPath, paths.VoiceOutput)
	if !res.OK {
		return stageError(res)
	}
	return nil
}

func stageError(res stageproc.Result) error {
	marker := services.ErrStage
	if res.TimedOut {
		marker = services.ErrTimeout
	}
	return services.Wrap(marker, "", "", res.Reason, nil)
}

func aggregateStageFailures(reenactFailure, voiceFailure *stageFailure) error {
	var (
		reasons  []string
		timedOut bool
	)
	for _, f := range []*stageFailure{reenactFailure, voiceFailure} {
		if f == nil {
			continue
		}
		reasons = append(reasons, f.reason)
		timedOut = timedOut || f.timedOut
	}
	if len(reasons) == 0 {
		return nil
	}
	marker := services.ErrStage
	if timedOut {
		marker = services.ErrTimeout
	}
	return services.Wrap(marker, "", "", strings.Join(reasons, "; "), nil)
}

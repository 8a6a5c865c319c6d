package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"mimic/internal/logging"
	"mimic/internal/queue"
	"mimic/internal/services"
)

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	m.logger.Info("dispatcher started",
		logging.Duration("poll_interval", m.pollInterval),
		logging.String("mode", m.cfg.Workflow.ExecutionMode))

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("dispatcher stopped")
			return
		default:
		}

		job, err := m.store.ClaimNextPending(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			m.setLastError(err)
			m.logger.Error("failed to claim next job",
				logging.Error(err),
				logging.String(logging.FieldEventType, "claim_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"))
			m.sleep(ctx, m.retryInterval)
			continue
		}
		if job == nil {
			m.sleep(ctx, m.pollInterval)
			continue
		}

		m.notifier.JobUpdated(*job)
		if err := m.processJob(ctx, job); err != nil && errors.Is(err, context.Canceled) {
			m.logger.Debug("job interrupted by shutdown", logging.String(logging.FieldJobID, job.ID))
		}
	}
}

// processJob runs the pipeline for one claimed job and writes exactly one
// terminal state. A panic anywhere below the dispatcher is converted into a
// job failure so the loop survives misbehaving collaborators.
func (m *Manager) processJob(ctx context.Context, job *queue.Job) (err error) {
	logger := m.logger.With(
		logging.String(logging.FieldJobID, job.ID),
		logging.String("identity", job.IdentityID))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panicked",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldEventType, "job_panic"))
			detail := fmt.Sprintf("internal error: %v", r)
			m.finalizeFailure(ctx, logger, job, detail)
			err = fmt.Errorf("pipeline panic: %v", r)
			m.setLastError(err)
		}
	}()

	logger.Info("job started", logging.String(logging.FieldEventType, "job_start"))

	outputPath, runErr := m.runner.Process(ctx, job, m.progressFunc(ctx, logger, job))
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return runErr
		}
		m.setLastError(runErr)
		logger.Error("job failed",
			logging.Error(runErr),
			logging.Bool("timed_out", services.IsTimeout(runErr)),
			logging.Duration("job_duration", time.Since(start)),
			logging.String(logging.FieldEventType, "job_failure"))
		m.finalizeFailure(ctx, logger, job, runErr.Error())
		return runErr
	}

	if err := m.store.FinalizeSuccess(ctx, job.ID, outputPath); err != nil {
		m.setLastError(err)
		logger.Error("failed to persist job success", logging.Error(err))
		return err
	}
	job.Status = queue.StatusCompleted
	job.Progress = 100
	job.OutputPath = outputPath
	m.setLastJob(job)
	m.notifier.JobUpdated(*job)

	logger.Info("job completed",
		logging.String("output", outputPath),
		logging.Duration("job_duration", time.Since(start)),
		logging.String(logging.FieldEventType, "job_complete"))
	return nil
}

func (m *Manager) finalizeFailure(ctx context.Context, logger *slog.Logger, job *queue.Job, detail string) {
	// Shutdown may already have canceled ctx; the failure row should still
	// be written so the job does not stay processing forever.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if err := m.store.FinalizeFailure(ctx, job.ID, detail); err != nil {
		logger.Error("failed to persist job failure", logging.Error(err))
		return
	}
	job.Status = queue.StatusFailed
	job.ErrorMessage = detail
	m.setLastJob(job)
	m.notifier.JobUpdated(*job)
}

// progressFunc builds the checkpoint callback handed to the pipeline. The
// store's monotonic guard makes concurrent-mode reports safe in any order;
// the in-memory copy only moves forward so broadcasts never regress.
func (m *Manager) progressFunc(ctx context.Context, logger *slog.Logger, job *queue.Job) func(int) {
	var progressMu sync.Mutex
	return func(progress int) {
		// Progress 100 belongs to the terminal transition alone.
		if progress > 99 {
			progress = 99
		}
		if err := m.store.UpdateProgress(ctx, job.ID, progress); err != nil {
			logger.Warn("failed to persist progress",
				logging.Int("progress", progress),
				logging.Error(err))
			return
		}
		progressMu.Lock()
		if progress > job.Progress {
			job.Progress = progress
			m.notifier.JobUpdated(*job)
		}
		progressMu.Unlock()
		logger.Debug("progress checkpoint", logging.Int("progress", progress))
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

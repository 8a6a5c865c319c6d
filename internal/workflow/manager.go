package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"mimic/internal/config"
	"mimic/internal/logging"
	"mimic/internal/queue"
)

// JobRunner executes the transformation pipeline for one claimed job.
// *pipeline.Runner satisfies it.
type JobRunner interface {
	Process(ctx context.Context, job *queue.Job, report func(progress int)) (outputPath string, err error)
}

// Manager owns the dispatcher loop.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	runner   JobRunner
	logger   *slog.Logger
	notifier Notifier

	pollInterval  time.Duration
	retryInterval time.Duration

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	lastJob *queue.Job
}

// NewManager constructs a dispatcher over the given store and runner.
func NewManager(cfg *config.Config, store *queue.Store, runner JobRunner, logger *slog.Logger, notifier Notifier) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Manager{
		cfg:           cfg,
		store:         store,
		runner:        runner,
		logger:        logger.With(logging.String(logging.FieldComponent, "dispatcher")),
		notifier:      notifier,
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
	}
}

// Start begins background processing. It returns an error when the
// dispatcher is already running.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("dispatcher already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for the in-flight job (if
// any) to unwind.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the dispatcher loop is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastError returns the most recent transient or job error the loop saw.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// LastJob returns a copy of the most recently finalized job.
func (m *Manager) LastJob() *queue.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastJob == nil {
		return nil
	}
	copied := *m.lastJob
	return &copied
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastJob(job *queue.Job) {
	m.mu.Lock()
	copied := *job
	m.lastJob = &copied
	m.mu.Unlock()
}

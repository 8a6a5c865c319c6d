package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"mimic/internal/config"
	"mimic/internal/identity"
	"mimic/internal/logging"
	"mimic/internal/queue"
	"mimic/internal/workflow"
)

// Daemon coordinates the dispatcher, identity catalog, and API server, and
// enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	catalog  *identity.Catalog
	workflow *workflow.Manager
	hub      *Hub
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	QueueDBPath  string
	LockFilePath string
	Queue        queue.HealthSummary
	LastError    error
}

// New constructs a daemon with initialized dependencies. The hub must be the
// same one registered as the workflow notifier so API clients observe the
// dispatcher's updates.
func New(cfg *config.Config, store *queue.Store, catalog *identity.Catalog, wf *workflow.Manager, hub *Hub, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || catalog == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, catalog, and workflow manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "mimicd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		catalog:  catalog,
		workflow: wf,
		hub:      hub,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// NewValidator builds the enqueue-time submission validator for the given
// catalog and config, for wiring into queue.Open.
func NewValidator(cfg *config.Config, catalog *identity.Catalog) queue.InputValidator {
	return newSubmissionValidator(catalog, cfg.UploadsDir())
}

// Start acquires the daemon lock and launches the dispatcher and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mimic daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.workflow.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start dispatcher: %w", err)
	}
	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			d.workflow.Stop()
			_ = d.lock.Unlock()
			cancel()
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("mimic daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("identities", len(d.catalog.List())))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if d.api != nil {
		d.api.stop()
	}
	if d.hub != nil {
		d.hub.Close()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("mimic daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	summary, err := d.store.HealthSummary(ctx)
	if err != nil {
		d.logger.Warn("failed to read queue health", logging.Error(err))
	}
	lastErr := d.workflow.LastError()
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		QueueDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		Queue:        summary,
		LastError:    lastErr,
	}
}

package workflow_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mimic/internal/logging"
	"mimic/internal/pipeline"
	"mimic/internal/queue"
	"mimic/internal/services"
	"mimic/internal/testsupport"
	"mimic/internal/workflow"
)

// The dispatcher must accept the real pipeline runner, not just test fakes.
var _ workflow.JobRunner = (*pipeline.Runner)(nil)

type fakeRunner struct {
	mu      sync.Mutex
	process func(ctx context.Context, job *queue.Job, report func(int)) (string, error)
	seen    []string
}

func (f *fakeRunner) Process(ctx context.Context, job *queue.Job, report func(int)) (string, error) {
	f.mu.Lock()
	f.seen = append(f.seen, job.ID)
	f.mu.Unlock()
	if f.process != nil {
		return f.process(ctx, job, report)
	}
	return "/out/" + job.ID + ".mp4", nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []queue.Job
}

func (r *recordingNotifier) JobUpdated(job queue.Job) {
	r.mu.Lock()
	r.events = append(r.events, job)
	r.mu.Unlock()
}

func (r *recordingNotifier) snapshot() []queue.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queue.Job(nil), r.events...)
}

func waitForStatus(t *testing.T, store *queue.Store, id string, want queue.Status) *queue.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if job != nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", id, want)
	return nil
}

func TestManagerProcessesJobToCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}
	runner := &fakeRunner{
		process: func(ctx context.Context, job *queue.Job, report func(int)) (string, error) {
			report(5)
			report(50)
			report(95)
			return "/out/" + job.ID + ".mp4", nil
		},
	}

	manager := workflow.NewManager(cfg, store, runner, logging.NewNop(), notifier)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	job := testsupport.NewJob(t, store, "alice", "face.jpg", "video.mp4")
	final := waitForStatus(t, store, job.ID, queue.StatusCompleted)

	if final.Progress != 100 {
		t.Fatalf("expected progress 100 at completion, got %d", final.Progress)
	}
	if final.OutputPath != "/out/"+job.ID+".mp4" {
		t.Fatalf("unexpected output path %q", final.OutputPath)
	}
	if final.ErrorMessage != "" {
		t.Fatalf("expected empty error detail, got %q", final.ErrorMessage)
	}

	// Broadcasts never regress and end terminal.
	events := notifier.snapshot()
	if len(events) == 0 {
		t.Fatal("expected notifier events")
	}
	last := events[len(events)-1]
	if last.Status != queue.StatusCompleted || last.Progress != 100 {
		t.Fatalf("unexpected final event %#v", last)
	}
	prev := -1
	for _, evt := range events {
		if evt.Progress < prev {
			t.Fatalf("notifier progress regressed: %v", events)
		}
		prev = evt.Progress
	}
}

func TestManagerRecordsPipelineFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	runner := &fakeRunner{
		process: func(ctx context.Context, job *queue.Job, report func(int)) (string, error) {
			return "", services.Wrap(services.ErrStage, "", "", "reenactment exited with code 1", nil)
		},
	}

	manager := workflow.NewManager(cfg, store, runner, logging.NewNop(), nil)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	job := testsupport.NewJob(t, store, "alice", "face.jpg", "video.mp4")
	final := waitForStatus(t, store, job.ID, queue.StatusFailed)

	if !strings.Contains(final.ErrorMessage, "reenactment exited with code 1") {
		t.Fatalf("expected stage reason in error detail, got %q", final.ErrorMessage)
	}
	if final.OutputPath != "" {
		t.Fatalf("failed job must not carry an output path, got %q", final.OutputPath)
	}
	if err := manager.LastError(); err == nil {
		t.Fatal("expected manager to record the job error")
	}
}

func TestManagerSurvivesRunnerPanic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	var calls int
	var mu sync.Mutex
	runner := &fakeRunner{
		process: func(ctx context.Context, job *queue.Job, report func(int)) (string, error) {
			mu.Lock()
			calls++
			first := calls == 1
			mu.Unlock()
			if first {
				panic("collaborator bug")
			}
			return "/out/" + job.ID + ".mp4", nil
		},
	}

	manager := workflow.NewManager(cfg, store, runner, logging.NewNop(), nil)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	crashing := testsupport.NewJob(t, store, "alice", "face.jpg", "first.mp4")
	failed := waitForStatus(t, store, crashing.ID, queue.StatusFailed)
	if !strings.Contains(failed.ErrorMessage, "internal error") {
		t.Fatalf("expected panic recorded as internal error, got %q", failed.ErrorMessage)
	}

	// The loop keeps dispatching after the panic.
	next := testsupport.NewJob(t, store, "alice", "face.jpg", "second.mp4")
	waitForStatus(t, store, next.ID, queue.StatusCompleted)
}

func TestManagerProcessesJobsInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	runner := &fakeRunner{}

	first := testsupport.NewJob(t, store, "alice", "face.jpg", "first.mp4")
	second := testsupport.NewJob(t, store, "alice", "face.jpg", "second.mp4")

	manager := workflow.NewManager(cfg, store, runner, logging.NewNop(), nil)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	waitForStatus(t, store, second.ID, queue.StatusCompleted)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if len(runner.seen) != 2 || runner.seen[0] != first.ID || runner.seen[1] != second.ID {
		t.Fatalf("expected FIFO dispatch [%s %s], got %v", first.ID, second.ID, runner.seen)
	}
}

func TestManagerStartTwiceFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, &fakeRunner{}, logging.NewNop(), nil)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
}

func TestManagerStopUnblocksPromptly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, &fakeRunner{}, logging.NewNop(), nil)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		manager.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
	if manager.Running() {
		t.Fatal("expected manager stopped")
	}
}

func TestManagerShutdownMidJobLeavesCancelError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	started := make(chan struct{})
	runner := &fakeRunner{
		process: func(ctx context.Context, job *queue.Job, report func(int)) (string, error) {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		},
	}

	manager := workflow.NewManager(cfg, store, runner, logging.NewNop(), nil)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	testsupport.NewJob(t, store, "alice", "face.jpg", "video.mp4")

	<-started
	manager.Stop()

	if err := manager.LastError(); err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected last error after shutdown: %v", err)
	}
}

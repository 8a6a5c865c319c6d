package testsupport

import (
	"context"
	"testing"

	"mimic/internal/config"
	"mimic/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...queue.StoreOption) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg, opts...)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob enqueues a job for tests using the provided store.
func NewJob(t testing.TB, store *queue.Store, identityID, image, sourceVideo string) *queue.Job {
	t.Helper()

	job, err := store.Enqueue(context.Background(), queue.NewJobRequest{
		IdentityID:    identityID,
		IdentityImage: image,
		SourceVideo:   sourceVideo,
	})
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return job
}

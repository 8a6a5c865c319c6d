package api

import (
	"context"

	"mimic/internal/queue"
)

// JobReader abstracts the queue reads the API surface needs.
type JobReader interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error)
	GetByID(ctx context.Context, id string) (*queue.Job, error)
	Library(ctx context.Context) ([]*queue.Job, error)
	HealthSummary(ctx context.Context) (queue.HealthSummary, error)
}

// JobService exposes read-only job operations returning API DTOs.
type JobService struct {
	store JobReader
}

// NewJobService constructs a JobService around the provided reader.
func NewJobService(store JobReader) *JobService {
	if store == nil {
		return nil
	}
	return &JobService{store: store}
}

// List returns jobs filtered by status.
func (s *JobService) List(ctx context.Context, statuses ...queue.Status) ([]Job, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	jobs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromJobs(jobs), nil
}

// Describe fetches a single job, nil when absent.
func (s *JobService) Describe(ctx context.Context, id string) (*Job, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	job, err := s.store.GetByID(ctx, id)
	if err != nil || job == nil {
		return nil, err
	}
	converted := FromJob(job)
	return &converted, nil
}

// Progress fetches the polling payload for a job, nil when absent.
func (s *JobService) Progress(ctx context.Context, id string) (*JobProgress, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	job, err := s.store.GetByID(ctx, id)
	if err != nil || job == nil {
		return nil, err
	}
	progress := ProgressFromJob(job)
	return &progress, nil
}

// Library returns completed jobs, newest first.
func (s *JobService) Library(ctx context.Context) ([]Job, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	jobs, err := s.store.Library(ctx)
	if err != nil {
		return nil, err
	}
	return FromJobs(jobs), nil
}

// Stats returns queue counts keyed by status string.
func (s *JobService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	summary, err := s.store.HealthSummary(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]int{
		string(queue.StatusPending):    summary.Pending,
		string(queue.StatusProcessing): summary.Processing,
		string(queue.StatusCompleted):  summary.Completed,
		string(queue.StatusFailed):     summary.Failed,
	}, nil
}

package api

import (
	"time"

	"mimic/internal/identity"
	"mimic/internal/queue"
)

// FromJob converts a queue row into its transport representation.
func FromJob(job *queue.Job) Job {
	if job == nil {
		return Job{}
	}
	return Job{
		ID:            job.ID,
		IdentityID:    job.IdentityID,
		IdentityImage: job.IdentityImage,
		UserVideo:     job.SourceVideo,
		Status:        string(job.Status),
		Progress:      job.Progress,
		OutputVideo:   job.OutputPath,
		Error:         job.ErrorMessage,
		CreatedAt:     formatTime(job.CreatedAt),
		UpdatedAt:     formatTime(job.UpdatedAt),
	}
}

// FromJobs converts a slice of queue rows, preserving order.
func FromJobs(jobs []*queue.Job) []Job {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// ProgressFromJob extracts the lightweight polling payload.
func ProgressFromJob(job *queue.Job) JobProgress {
	if job == nil {
		return JobProgress{}
	}
	return JobProgress{Status: string(job.Status), Progress: job.Progress}
}

// FromIdentity converts a catalog entry into its transport representation.
func FromIdentity(id identity.Identity) Identity {
	return Identity{
		ID:          id.ID,
		Name:        id.Name,
		Images:      id.Images,
		VoiceSample: id.Audio,
	}
}

// FromIdentities converts a slice of catalog entries, preserving order.
func FromIdentities(ids []identity.Identity) []Identity {
	out := make([]Identity, 0, len(ids))
	for _, id := range ids {
		out = append(out, FromIdentity(id))
	}
	return out
}

// EventFromJob builds the websocket broadcast payload for a job update.
func EventFromJob(job queue.Job) JobEvent {
	return JobEvent{
		Type:     "job_update",
		JobID:    job.ID,
		Status:   string(job.Status),
		Progress: job.Progress,
		Output:   job.OutputPath,
		Error:    job.ErrorMessage,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

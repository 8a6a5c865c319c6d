package workflow

import "mimic/internal/queue"

// Notifier receives job state changes as they are persisted. The daemon
// wires this to the websocket hub; tests substitute a recorder.
type Notifier interface {
	JobUpdated(job queue.Job)
}

// NopNotifier discards all updates.
type NopNotifier struct{}

func (NopNotifier) JobUpdated(queue.Job) {}

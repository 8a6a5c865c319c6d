// Package workflow hosts the dispatcher that drains the job queue.
//
// A single background goroutine claims the oldest pending job, runs the
// pipeline for it synchronously, finalizes the terminal state, and claims
// again. An empty queue sleeps for the poll interval; store errors are
// transient and retried after the error retry interval without failing any
// job. Pipeline errors and collaborator panics are caught at the dispatcher
// boundary and recorded as the job's failure detail.
package workflow

// Package pipeline drives one job's two transformation stages to completion
// and produces the final muxed artifact.
//
// The runner resolves the job's input paths, invokes the reenactment and
// voice conversion adapters under the configured execution mode, reports
// progress checkpoints through a caller-supplied callback, and aggregates
// stage failures into a single human-readable error. Sequential mode runs
// the stages back to back and is the default: the accelerator cannot always
// host both models at once. Concurrent mode overlaps the two stages and
// waits for both to finish before deciding the outcome.
//
// Intermediate artifacts are written to job-scoped temp paths and retained
// on success and failure so operators can inspect them. Retention is an
// external concern.
package pipeline

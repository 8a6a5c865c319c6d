// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (invalid input, stage failure, combine failure, store failure, timeout).
//   - A command Executor abstraction so subprocess invocations stay testable.
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays uniform across the pipeline.
package services

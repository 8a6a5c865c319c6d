// Package preflight verifies the daemon's external environment before any
// job is claimed: stage entry scripts, required binaries, directory access,
// and free disk space. The daemon fails fast on a failed mandatory check so
// jobs never start against a broken environment; the status CLI reuses the
// same checks for diagnostics.
package preflight

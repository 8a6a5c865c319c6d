// Package queue persists jobs in SQLite and is the sole source of truth for
// job status and progress.
//
// The Store manages the database connection, schema initialization, race-free
// claiming of the oldest pending job, monotonic progress writes, and the
// single atomic transition from processing to a terminal state. Progress is
// an integer 0-100 that never decreases; exactly one of output_path and
// error_message is populated once a job is terminal.
//
// The database is transient storage for in-flight and recently finished jobs
// rather than a long-term archive. Schema changes bump the version in
// schema.go; users clear the database to adopt the new schema.
package queue

// Package logging wraps log/slog with the conventions the daemon and CLI
// share: standardized field names, attribute helpers, context-derived
// job/stage fields, and construction from application config (console or JSON
// output to stdout plus the daemon log file).
package logging

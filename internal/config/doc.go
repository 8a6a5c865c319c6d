// Package config loads and validates the TOML configuration shared by the
// daemon and CLI. Defaults live in defaults.go; Load applies the file on top
// of them, expands ~ in every path field, and validates the result.
package config

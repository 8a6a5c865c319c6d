// Package api defines the transport-level payloads exchanged with daemon
// clients and the read-only services that produce them. Field names follow
// the wire contract existing clients poll against.
package api

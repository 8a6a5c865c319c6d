// Package daemon wires the long-running process together: single-instance
// locking, the dispatcher, the identity catalog, and the HTTP API with its
// websocket broadcast hub.
package daemon

// Package identity manages the catalog of reference identities. Each
// identity is a subdirectory of the configured identities directory holding
// one or more face images and a single voice sample. The catalog is scanned
// once at construction and re-scanned on demand via Refresh; it is passed by
// reference to collaborators needing lookups rather than held as global
// state.
package identity

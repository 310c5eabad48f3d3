// File: backend.go
// Role: the persistence-backend contract from spec §6 — a flat blob store
// keyed by string, deliberately ignorant of graph structure. Callers
// serialize a graph (e.g. via codec.JSONCodec) into a blob and hand it to
// Backend; Backend never parses it.
// AI-HINT (file):
//   - Every method is a total function: absence is reported through the
//     return value (ok bool / error), never a panic.
//   - Backend says nothing about synchronous vs. asynchronous; MemoryBackend
//     happens to be synchronous because it never leaves the process.
package storage

import "errors"

// ErrNotFound is the not-found sentinel for Backend implementations. Load and
// Delete do not return it: Load reports an absent key through ok=false and
// Delete of an absent key succeeds; MemoryBackend never returns it.
var ErrNotFound = errors.New("storage: key not found")

// Info is the diagnostic snapshot Backend.Info returns (spec §6:
// "info() -> {type, capacity?, used?, count}"). Capacity and Used are
// backend-specific and may be left at zero when the concept doesn't apply.
type Info struct {
	Type     string
	Capacity int64
	Used     int64
	Count    int
}

// Backend is the storage back-end interface from spec §6: persists a
// serialized blob under a key, plus the metadata operations a caller needs
// to manage a collection of blobs. Implementations may be synchronous or
// asynchronous internally; this interface exposes only the synchronous
// surface the core assumes.
type Backend interface {
	// Store persists blob under key, replacing any existing blob at key.
	Store(key string, blob []byte) error

	// Load returns the blob stored under key. ok is false if key is absent;
	// Load never returns ErrNotFound through err in that case, only ok=false.
	Load(key string) (blob []byte, ok bool, err error)

	// Exists reports whether a blob is stored under key.
	Exists(key string) (bool, error)

	// Delete removes the blob stored under key. Deleting an absent key is
	// not an error (delete is idempotent).
	Delete(key string) error

	// List returns every key currently stored, in no particular order.
	List() ([]string, error)

	// Clear removes every stored blob.
	Clear() error

	// Info reports backend-level diagnostics.
	Info() (Info, error)
}

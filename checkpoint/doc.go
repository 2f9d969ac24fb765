// Package checkpoint implements the persistence boundary of tickmesh.
//
// Component state that must survive between ticks is serialized to opaque
// strings and stored under a key in a Store. Stores enforce a per-key size
// cap and reject oversized values instead of truncating them.
//
// This package provides:
//
//   - MemoryStore, an in-process Store for tests and single-process runs
//   - Record, a keyed collection whose entries decode independently
//   - Save / Load helpers for JSON encoded values
//
// A Badger-backed Store lives in the badger subpackage.
package checkpoint

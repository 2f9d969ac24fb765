package core

// CheckpointStore is the host persistence oracle. Values are opaque strings
// keyed by name; implementations enforce a per-key size cap and must reject,
// never truncate, oversized writes.
type CheckpointStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

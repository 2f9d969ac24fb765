package checkpoint

import "errors"

var (
	// ErrTooLarge is returned when a value exceeds the store's per-key cap.
	// Nothing is written.
	ErrTooLarge = errors.New("checkpoint value too large")
	// ErrNotFound is returned by Load when the key does not exist.
	ErrNotFound = errors.New("checkpoint not found")
)

package queue

import "errors"

var (
	// ErrFull is returned by the strict push variants when the ring is at capacity.
	ErrFull = errors.New("queue is full")
	// ErrEmpty is returned when popping or peeking an empty ring.
	ErrEmpty = errors.New("queue is empty")
	// ErrTooLarge is returned when a sequence does not fit the ring's capacity
	// on the fallible construction and restore paths.
	ErrTooLarge = errors.New("sequence exceeds queue capacity")
)

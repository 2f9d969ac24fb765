package search

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfSpace is returned when the search has no unexplored cell left.
	ErrOutOfSpace = errors.New("out of space")
	// ErrNoCandidate is returned when a step expanded a cell without finding
	// free tiles. The caller should try again at the next opportunity.
	ErrNoCandidate = errors.New("no candidate this step")
)

// OutOfSpaceError names the exhausted region.
type OutOfSpaceError struct {
	Region string
}

func (e *OutOfSpaceError) Error() string {
	return fmt.Sprintf("region %s: %v", e.Region, ErrOutOfSpace)
}

// Unwrap returns ErrOutOfSpace.
func (e *OutOfSpaceError) Unwrap() error { return ErrOutOfSpace }

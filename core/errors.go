package core

import (
	"errors"
	"fmt"
)

var (
	// ErrBudgetNotMet is returned when a task's budget requirement exceeds
	// the budget sampled for the tick. The task's action is not run.
	ErrBudgetNotMet = errors.New("budget requirement not met")
	// ErrAllChildrenFailed is returned by a sequence when no child succeeded.
	ErrAllChildrenFailed = errors.New("all children failed")
	// ErrTooManyChildren is returned when a control holds more children than
	// it is allowed to tick.
	ErrTooManyChildren = errors.New("too many children")
	// ErrCheckpointExists is returned when a checkpoint key is registered twice
	// within one tick.
	ErrCheckpointExists = errors.New("checkpoint already registered")
	// ErrCheckpointCorrupt is returned when a stored checkpoint does not
	// decode. The value is still registered and is replaced at commit.
	ErrCheckpointCorrupt = errors.New("checkpoint corrupt")
)

// BudgetError describes a task rejected by the budget gate.
type BudgetError struct {
	Task      string
	Required  int
	Available int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("task %q requires budget %d, %d available", e.Task, e.Required, e.Available)
}

// Unwrap returns ErrBudgetNotMet.
func (e *BudgetError) Unwrap() error { return ErrBudgetNotMet }

// ChildFailure names the child that caused a control to fail.
type ChildFailure struct {
	Control string
	Kind    string
	Child   string
	Err     error
}

func (e *ChildFailure) Error() string {
	return fmt.Sprintf("%s %q: child %q failed: %v", e.Kind, e.Control, e.Child, e.Err)
}

// Unwrap returns the child's error.
func (e *ChildFailure) Unwrap() error { return e.Err }

// Failf formats a plain failure for a leaf task.
func Failf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

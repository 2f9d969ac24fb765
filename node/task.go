package node

import (
	"time"

	"github.com/hupe1980/tickmesh/core"
)

// Action is the work performed by a Task.
type Action func(tc *core.TickContext) error

// TaskOptions configures a Task.
type TaskOptions struct {
	// Priority orders the task among its siblings; higher runs first.
	Priority int
	// RequiredBudget is the minimum sampled budget for the action to run.
	// Zero or negative disables the gate.
	RequiredBudget int
}

// WithPriority sets the task priority.
func WithPriority(p int) func(o *TaskOptions) {
	return func(o *TaskOptions) { o.Priority = p }
}

// WithRequiredBudget sets the task's budget requirement.
func WithRequiredBudget(n int) func(o *TaskOptions) {
	return func(o *TaskOptions) { o.RequiredBudget = n }
}

// Task is a leaf node: a named action gated by the tick's budget.
type Task struct {
	BaseNode
	action   Action
	priority int
	required int
}

var (
	_ core.Node        = (*Task)(nil)
	_ core.Prioritized = (*Task)(nil)
)

// NewTask creates a task running action.
func NewTask(name string, action Action, optFns ...func(o *TaskOptions)) *Task {
	opts := TaskOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Task{
		BaseNode: NewBaseNode(name),
		action:   action,
		priority: opts.Priority,
		required: opts.RequiredBudget,
	}
}

// Wrap turns any node, typically a Control, into a Task so it can carry a
// priority and a budget requirement.
func Wrap(name string, n core.Node, optFns ...func(o *TaskOptions)) *Task {
	return NewTask(name, n.Tick, optFns...)
}

// Priority implements core.Prioritized.
func (t *Task) Priority() int { return t.priority }

// RequiredBudget returns the task's budget requirement.
func (t *Task) RequiredBudget() int { return t.required }

// Tick runs the action exactly once unless the sampled budget is known and
// below the requirement, in which case the action is skipped and a
// *core.BudgetError is returned.
func (t *Task) Tick(tc *core.TickContext) error {
	if !tc.AdmitsBudget(t.required) {
		available, _ := tc.Budget()
		err := &core.BudgetError{Task: t.Name(), Required: t.required, Available: available}
		tc.LogDebug("Task skipped", "task", t.Name(), "required", t.required, "available", available)
		tc.Observer().ObserveNode(t.Name(), err)
		return err
	}

	if t.action == nil {
		return core.Failf("task %q has no action", t.Name())
	}

	start := time.Now()
	err := t.action(tc)
	tc.LogOutcome("task", t.Name(), err, "duration", time.Since(start))
	tc.Observer().ObserveNode(t.Name(), err)

	return err
}

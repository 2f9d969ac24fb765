package node

import (
	"fmt"

	"github.com/hupe1980/tickmesh/core"
)

// NewSequence creates a control that ticks every child exactly once
// regardless of earlier outcomes. It succeeds when at least one child
// succeeded and fails with core.ErrAllChildrenFailed otherwise, including
// when it has no children. Child errors are logged, not propagated.
func NewSequence(name string, children ...core.Node) *Control {
	return newControl(KindSequence, name, children)
}

func (c *Control) tickSequence(tc *core.TickContext, children []core.Node) (int, error) {
	succeeded := 0
	for _, child := range children {
		if err := c.tickChild(tc, child); err != nil {
			tc.LogDebug("Sequence child failed", "control", c.Name(), "child", child.Name(), "error", err.Error())
			continue
		}
		succeeded++
	}

	if succeeded == 0 {
		return 0, fmt.Errorf("sequence %q: %w", c.Name(), core.ErrAllChildrenFailed)
	}
	return succeeded, nil
}

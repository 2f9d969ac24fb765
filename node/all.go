package node

import "github.com/hupe1980/tickmesh/core"

// NewAll creates a control that ticks every child exactly once and always
// succeeds. Child failures are logged at warn level.
func NewAll(name string, children ...core.Node) *Control {
	return newControl(KindAll, name, children)
}

func (c *Control) tickAll(tc *core.TickContext, children []core.Node) int {
	succeeded := 0
	for _, child := range children {
		if err := c.tickChild(tc, child); err != nil {
			tc.LogWarn("Child failed", "control", c.Name(), "child", child.Name(), "error", err.Error())
			continue
		}
		succeeded++
	}
	return succeeded
}

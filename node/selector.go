package node

import "github.com/hupe1980/tickmesh/core"

// NewSelector creates a control that ticks children in order and stops at
// the first failure. It succeeds when every child succeeds; an empty
// selector succeeds.
func NewSelector(name string, children ...core.Node) *Control {
	return newControl(KindSelector, name, children)
}

func (c *Control) tickSelector(tc *core.TickContext, children []core.Node) (int, error) {
	for i, child := range children {
		if err := c.tickChild(tc, child); err != nil {
			return i, &core.ChildFailure{Control: c.Name(), Kind: string(c.kind), Child: child.Name(), Err: err}
		}
	}
	return len(children), nil
}

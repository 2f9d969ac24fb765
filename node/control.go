package node

import (
	"fmt"

	"github.com/hupe1980/tickmesh/core"
)

// Kind names a control policy.
type Kind string

const (
	// KindSelector stops at the first failing child.
	KindSelector Kind = "selector"
	// KindSequence ticks every child and succeeds if any succeeded.
	KindSequence Kind = "sequence"
	// KindAll ticks every child and always succeeds.
	KindAll Kind = "all"
)

// Control composes child nodes under one of the Kind policies.
//
// A Control holds at most MaxChildren children. Constructors accept any
// number of children so trees can be built declaratively, but a Control
// holding more than MaxChildren fails every Tick with core.ErrTooManyChildren.
// Append enforces the bound eagerly.
type Control struct {
	BaseNode
	kind       Kind
	children   []core.Node
	preferLast string
}

var _ core.Node = (*Control)(nil)

func newControl(kind Kind, name string, children []core.Node) *Control {
	return &Control{
		BaseNode: NewBaseNode(name),
		kind:     kind,
		children: append([]core.Node(nil), children...),
	}
}

// Kind returns the control's policy.
func (c *Control) Kind() Kind { return c.kind }

// Children returns a snapshot of the children in tick order.
func (c *Control) Children() []core.Node {
	return append([]core.Node(nil), c.children...)
}

// Len returns the number of children.
func (c *Control) Len() int { return len(c.children) }

// Append adds child at the end, or returns core.ErrTooManyChildren when
// the control is full.
func (c *Control) Append(child core.Node) error {
	if len(c.children) >= MaxChildren {
		return fmt.Errorf("%s %q: %w (max %d)", c.kind, c.Name(), core.ErrTooManyChildren, MaxChildren)
	}
	c.children = append(c.children, child)
	return nil
}

// SortByPriority stably orders the children by descending priority.
func (c *Control) SortByPriority() *Control {
	SortByPriority(c.children)
	return c
}

// PreferLast makes the control favor the child that last succeeded for
// entity. At tick time that child gets one extra point of priority, the
// children are stably ordered by priority, and every successful child is
// remembered as the entity's last branch.
func (c *Control) PreferLast(entity string) *Control {
	c.preferLast = entity
	return c
}

// Tick runs the children according to the control's policy.
func (c *Control) Tick(tc *core.TickContext) error {
	if len(c.children) > MaxChildren {
		return fmt.Errorf("%s %q: %w (%d > %d)", c.kind, c.Name(), core.ErrTooManyChildren, len(c.children), MaxChildren)
	}

	children := c.children
	if c.preferLast != "" {
		children = preferLastOrder(tc, c.preferLast, children)
	}

	var err error
	succeeded := 0
	switch c.kind {
	case KindSelector:
		succeeded, err = c.tickSelector(tc, children)
	case KindSequence:
		succeeded, err = c.tickSequence(tc, children)
	case KindAll:
		succeeded = c.tickAll(tc, children)
	default:
		err = core.Failf("unknown control kind %q", c.kind)
	}

	tc.LogOutcome(string(c.kind), c.Name(), err, "children", len(children), "succeeded", succeeded)

	return err
}

// tickChild ticks one child and records it as the last branch on success
// when the control prefers the last branch.
func (c *Control) tickChild(tc *core.TickContext, child core.Node) error {
	err := child.Tick(tc)
	if err == nil && c.preferLast != "" {
		tc.Memory.SetLastBranch(c.preferLast, child.Name())
	}
	return err
}

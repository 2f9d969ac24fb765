package core

// Node defines the contract every behavior tree element implements.
//
// A node is ticked at most once per host invocation. Tick returns nil on
// success and an error on failure; there is no running state, so a node that
// needs several ticks to finish persists its progress through the
// TickContext (memory or checkpoints) and is simply ticked again next time.
//
// Implementations must:
//   - Perform at most a bounded amount of work per Tick
//   - Never retain the TickContext beyond the call
//   - Report failure through the returned error rather than panicking
type Node interface {
	Name() string
	Tick(tc *TickContext) error
}

// Prioritized is implemented by nodes that carry an ordering priority.
// Higher values run first when a control sorts its children.
type Prioritized interface {
	Priority() int
}

// PriorityOf returns the node's priority, or zero when it carries none.
func PriorityOf(n Node) int {
	if p, ok := n.(Prioritized); ok {
		return p.Priority()
	}
	return 0
}

package node

import (
	"cmp"
	"math"
	"slices"

	"github.com/hupe1980/tickmesh/core"
)

// SortByPriority stably sorts nodes in place by descending priority. Nodes
// without a priority count as zero.
func SortByPriority(nodes []core.Node) {
	slices.SortStableFunc(nodes, func(a, b core.Node) int {
		return cmp.Compare(core.PriorityOf(b), core.PriorityOf(a))
	})
}

// preferLastOrder returns a stably sorted copy of children in which the
// entity's last successful branch gains one point of priority.
func preferLastOrder(tc *core.TickContext, entity string, children []core.Node) []core.Node {
	last, ok := tc.Memory.LastBranch(entity)

	type ranked struct {
		node     core.Node
		priority int
	}

	rs := make([]ranked, len(children))
	for i, child := range children {
		p := core.PriorityOf(child)
		if ok && child.Name() == last && p < math.MaxInt {
			p++
		}
		rs[i] = ranked{node: child, priority: p}
	}

	slices.SortStableFunc(rs, func(a, b ranked) int { return cmp.Compare(b.priority, a.priority) })

	out := make([]core.Node, len(rs))
	for i, r := range rs {
		out[i] = r.node
	}
	return out
}

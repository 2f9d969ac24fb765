package node

import "github.com/hupe1980/tickmesh/core"

// WithBranchSave wraps n so that every success records n's name as the
// entity's last branch in the tick's memory.
func WithBranchSave(entity string, n core.Node) core.Node {
	return &branchSave{Node: n, entity: entity}
}

type branchSave struct {
	core.Node
	entity string
}

func (b *branchSave) Priority() int { return core.PriorityOf(b.Node) }

func (b *branchSave) Tick(tc *core.TickContext) error {
	if err := b.Node.Tick(tc); err != nil {
		return err
	}
	tc.Memory.SetLastBranch(b.entity, b.Node.Name())
	return nil
}

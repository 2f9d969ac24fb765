package sim

import (
	"github.com/hupe1980/tickmesh/core"
	"github.com/hupe1980/tickmesh/node"
)

// Memory keys written by the repair task per structure.
const (
	KeyRepairs    = "repairs"
	KeyLastRepair = "last_repair"
)

// RepairOptions configures the repair task.
type RepairOptions struct {
	// RequiredBudget gates the task.
	RequiredBudget int
	// Priority orders the task among its siblings.
	Priority int
	// Amount is the health restored per tick.
	Amount int
	// Below is the health under which a structure needs repair.
	Below int
}

// NewRepairTask returns a task that repairs the most damaged structure of
// the world each tick and records the repair in entity memory. It fails
// when nothing needs repair.
func NewRepairTask(w *World, optFns ...func(o *RepairOptions)) *node.Task {
	opts := RepairOptions{
		RequiredBudget: 500,
		Amount:         20,
		Below:          w.opts.MaxHits / 2,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	action := func(tc *core.TickContext) error {
		target, ok := w.mostDamaged(opts.Below)
		if !ok {
			return core.Failf("repair: nothing to repair")
		}

		restored := w.Repair(target.ID, opts.Amount)

		repairs, _ := tc.Memory.Int(target.ID, KeyRepairs)
		if err := tc.Memory.Set(target.ID, KeyRepairs, repairs+1); err != nil {
			return err
		}
		if err := tc.Memory.Set(target.ID, KeyLastRepair, tc.Time); err != nil {
			return err
		}

		tc.EntityLogger(target.ID).Debug("Structure repaired", "hits", target.Hits+restored, "repairs", repairs+1)
		return nil
	}

	return node.NewTask("repair", action,
		node.WithRequiredBudget(opts.RequiredBudget),
		node.WithPriority(opts.Priority),
	)
}

// mostDamaged returns the structure with the fewest hits below the given
// health, ties broken by ID.
func (w *World) mostDamaged(below int) (Structure, bool) {
	var (
		best  Structure
		found bool
	)
	for _, name := range w.Regions() {
		for _, s := range w.Structures(name) {
			if s.Hits >= below {
				continue
			}
			if !found || s.Hits < best.Hits || (s.Hits == best.Hits && s.ID < best.ID) {
				best, found = s, true
			}
		}
	}
	return best, found
}

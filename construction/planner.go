// Package construction places structures in regions using the incremental
// placement search, one region per tick, within the tick's budget.
package construction

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tickmesh/checkpoint"
	"github.com/hupe1980/tickmesh/core"
	"github.com/hupe1980/tickmesh/node"
	"github.com/hupe1980/tickmesh/search"
)

// Result is the host's answer to a placement request.
type Result int

const (
	// Placed means the structure was accepted.
	Placed Result = iota
	// InvalidTarget means the tile cannot take a structure.
	InvalidTarget
	// Full means the region accepts no more structures.
	Full
	// Rejected covers every other refusal; the tile is kept for the next kind.
	Rejected
)

func (r Result) String() string {
	switch r {
	case Placed:
		return "placed"
	case InvalidTarget:
		return "invalid_target"
	case Full:
		return "full"
	default:
		return "rejected"
	}
}

// Site is the host collaborator that owns the regions.
type Site interface {
	// Anchor returns the tile a region's search starts from.
	Anchor(region string) (search.Point, bool)
	// Wanted returns at most max structure kinds the region needs now.
	Wanted(region string, max int) []string
	// Place asks the host to put a structure of kind at p.
	Place(region string, p search.Point, kind string) Result
}

// Search step outcome labels reported to the observer.
const (
	OutcomeCandidate  = "candidate"
	OutcomeNone       = "no_candidate"
	OutcomeOutOfSpace = "out_of_space"
	OutcomeError      = "error"
)

// DefaultAnchor is used when the site has no anchor for a region.
var DefaultAnchor = search.Pt(25, 25)

// Options configures a Planner.
type Options struct {
	// Regions are served round-robin, one per tick.
	Regions []string
	// Key is the checkpoint key of the persisted search record.
	Key string
	// Search tunes every region's matrix.
	Search search.Config
	// MaxSteps bounds the cells expanded per tick.
	MaxSteps int
	// MaxPerTick bounds the structures placed per tick.
	MaxPerTick int
	// RequiredBudget gates the planner task.
	RequiredBudget int
	// Priority orders the planner task among its siblings.
	Priority int
}

// Planner decides where structures go.
type Planner struct {
	site Site
	occ  search.Occupancy
	opts Options
}

// NewPlanner constructs a Planner with optional overrides.
func NewPlanner(site Site, occ search.Occupancy, optFns ...func(o *Options)) *Planner {
	opts := Options{
		Key:            "construction",
		Search:         search.DefaultConfig(),
		MaxSteps:       4,
		MaxPerTick:     2,
		RequiredBudget: 5000,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Planner{site: site, occ: occ, opts: opts}
}

// Task returns the planner as a budget-gated task.
func (p *Planner) Task() *node.Task {
	return node.NewTask("construction", p.Tick,
		node.WithRequiredBudget(p.opts.RequiredBudget),
		node.WithPriority(p.opts.Priority),
	)
}

// Region returns the region served at host time tick.
func (p *Planner) Region(tick uint64) (string, bool) {
	if len(p.opts.Regions) == 0 {
		return "", false
	}
	return p.opts.Regions[tick%uint64(len(p.opts.Regions))], true
}

func (p *Planner) anchor(region string) search.Point {
	if a, ok := p.site.Anchor(region); ok {
		return a
	}
	return DefaultAnchor
}

// Tick serves one region: it restores the region's search, places up to
// MaxPerTick structures and leaves the search state to be checkpointed.
func (p *Planner) Tick(tc *core.TickContext) error {
	region, ok := p.Region(tc.Time)
	if !ok {
		return core.Failf("construction: no regions configured")
	}

	cfg := p.opts.Search
	record := checkpoint.NewRecord(func() *search.Matrix { return search.NewEmptyMatrix(cfg) })
	if err := tc.Checkpoint(p.opts.Key, record); err != nil {
		if !errors.Is(err, core.ErrCheckpointCorrupt) {
			return fmt.Errorf("construction: %w", err)
		}
		tc.LogWarn("Discarding corrupt search state", "error", err.Error())
	}
	if dropped, err := record.Dropped(); len(dropped) > 0 {
		tc.LogWarn("Dropped corrupt search state", "regions", dropped, "error", err.Error())
	}

	m, ok := record.Get(region)
	if !ok || m == nil {
		m = search.NewMatrix(p.anchor(region), cfg)
		record.Set(region, m)
	}

	log := tc.EntityLogger(region)
	kinds := p.site.Wanted(region, p.opts.MaxPerTick)
	for _, kind := range kinds {
		pos, err := m.FindNextPosWithin(region, p.occ, p.opts.MaxSteps)
		switch {
		case err == nil:
			tc.Observer().ObserveSearchStep(region, OutcomeCandidate)
		case errors.Is(err, search.ErrNoCandidate):
			tc.Observer().ObserveSearchStep(region, OutcomeNone)
			log.Debug("No free tile yet", "explored", m.Explored())
			return nil
		case errors.Is(err, search.ErrOutOfSpace):
			tc.Observer().ObserveSearchStep(region, OutcomeOutOfSpace)
			m.Reset(p.anchor(region))
			return fmt.Errorf("construction: %w", err)
		default:
			tc.Observer().ObserveSearchStep(region, OutcomeError)
			return fmt.Errorf("construction: %w", err)
		}

		res := p.site.Place(region, pos, kind)
		log.Debug("Placement attempted", "kind", kind, "pos", pos.String(), "result", res.String())

		switch res {
		case Placed, InvalidTarget:
			m.PopOpenPos()
		case Full:
			return core.Failf("construction: region %s is full", region)
		}
	}

	return nil
}

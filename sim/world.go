package sim

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/tickmesh/construction"
	"github.com/hupe1980/tickmesh/core"
	"github.com/hupe1980/tickmesh/grid"
	"github.com/hupe1980/tickmesh/search"
)

// ErrUnknownRegion is returned for regions the world does not contain.
var ErrUnknownRegion = errors.New("sim: unknown region")

// Tile values stored in a region's terrain grid.
const (
	tilePlain byte = iota
	tileWall
	tileStructure
)

// DefaultKinds is the build order cycled through by Wanted.
var DefaultKinds = []string{"extension", "extension", "tower", "road", "extension", "storage"}

// Options configures a World.
type Options struct {
	// Seed makes terrain generation reproducible.
	Seed uint64
	// Regions are the region names, each with its own terrain.
	Regions []string
	// WallDensity is the probability of a tile being a wall.
	WallDensity float64
	// BucketStart is the initial budget.
	BucketStart int
	// BucketLimit is the budget regained per tick.
	BucketLimit int
	// BucketMax caps the budget.
	BucketMax int
	// NodeCost is charged per executed task and search step.
	NodeCost int
	// StructuresPerRoom is how many structures a region accepts.
	StructuresPerRoom int
	// MaxHits is the health of a new structure.
	MaxHits int
	// Decay is the health every structure loses per tick.
	Decay int
	// Kinds is the build order.
	Kinds []string
}

// Structure is a placed structure.
type Structure struct {
	ID     string
	Region string
	Kind   string
	Pos    search.Point
	Hits   int
}

type region struct {
	name       string
	anchor     search.Point
	terrain    *grid.ByteGrid
	structures map[search.Point]*Structure
	built      int
}

// World is a simulated host. It is safe for concurrent use.
type World struct {
	mu      sync.Mutex
	opts    Options
	regions map[string]*region
	order   []string
	bucket  int
	used    int
	ticks   uint64
}

// NewWorld generates the terrain of every region.
func NewWorld(optFns ...func(o *Options)) *World {
	opts := Options{
		Seed:              1,
		Regions:           []string{"W1N1"},
		WallDensity:       0.25,
		BucketStart:       6000,
		BucketLimit:       20,
		BucketMax:         10000,
		NodeCost:          10,
		StructuresPerRoom: 40,
		MaxHits:           200,
		Decay:             1,
		Kinds:             DefaultKinds,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	w := &World{
		opts:    opts,
		regions: make(map[string]*region, len(opts.Regions)),
		bucket:  min(opts.BucketStart, opts.BucketMax),
	}

	for i, name := range opts.Regions {
		if _, ok := w.regions[name]; ok {
			continue
		}
		w.regions[name] = newRegion(name, construction.DefaultAnchor, opts, uint64(i))
		w.order = append(w.order, name)
	}

	return w
}

func newRegion(name string, anchor search.Point, opts Options, stream uint64) *region {
	rng := rand.New(rand.NewPCG(opts.Seed, stream))
	terrain := grid.NewByteGrid(search.RegionSize, search.RegionSize)

	for x := 0; x < search.RegionSize; x++ {
		for y := 0; y < search.RegionSize; y++ {
			if rng.Float64() < opts.WallDensity {
				terrain.Set(x, y, tileWall)
			}
		}
	}

	// the anchor cell always has room to start building
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			terrain.Set(anchor.X+dx, anchor.Y+dy, tilePlain)
		}
	}

	return &region{
		name:       name,
		anchor:     anchor,
		terrain:    terrain,
		structures: map[search.Point]*Structure{},
	}
}

// Regions returns the region names in configuration order.
func (w *World) Regions() []string { return slices.Clone(w.order) }

// Blocked implements search.Occupancy. Tiles outside the region are skipped.
func (w *World) Blocked(name string, box search.Box) ([]search.Point, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	r, ok := w.regions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRegion, name)
	}

	var out []search.Point
	for x := box.Min.X; x <= box.Max.X; x++ {
		for y := box.Min.Y; y <= box.Max.Y; y++ {
			if r.terrain.InBounds(x, y) && r.terrain.Get(x, y) != tilePlain {
				out = append(out, search.Pt(x, y))
			}
		}
	}
	return out, nil
}

// Available implements core.BudgetOracle.
func (w *World) Available() (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bucket, true
}

// Bucket returns the current budget.
func (w *World) Bucket() int {
	b, _ := w.Available()
	return b
}

// Anchor implements construction.Site.
func (w *World) Anchor(name string) (search.Point, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.regions[name]
	if !ok {
		return search.Point{}, false
	}
	return r.anchor, true
}

// Wanted implements construction.Site. Kinds cycle through the build order
// until the region holds StructuresPerRoom structures.
func (w *World) Wanted(name string, limit int) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	r, ok := w.regions[name]
	if !ok || len(w.opts.Kinds) == 0 {
		return nil
	}

	n := min(limit, w.opts.StructuresPerRoom-len(r.structures))
	kinds := make([]string, 0, max(n, 0))
	for i := 0; i < n; i++ {
		kinds = append(kinds, w.opts.Kinds[(r.built+i)%len(w.opts.Kinds)])
	}
	return kinds
}

// Place implements construction.Site.
func (w *World) Place(name string, p search.Point, kind string) construction.Result {
	w.mu.Lock()
	defer w.mu.Unlock()

	r, ok := w.regions[name]
	if !ok {
		return construction.Rejected
	}
	if !p.Buildable() || r.terrain.Get(p.X, p.Y) != tilePlain {
		return construction.InvalidTarget
	}
	if len(r.structures) >= w.opts.StructuresPerRoom {
		return construction.Full
	}

	r.terrain.Set(p.X, p.Y, tileStructure)
	r.structures[p] = &Structure{
		ID:     fmt.Sprintf("%s/%s/%d,%d", name, kind, p.X, p.Y),
		Region: name,
		Kind:   kind,
		Pos:    p,
		Hits:   w.opts.MaxHits,
	}
	r.built++
	return construction.Placed
}

// Structures returns copies of a region's structures ordered by ID.
func (w *World) Structures(name string) []Structure {
	w.mu.Lock()
	defer w.mu.Unlock()

	r, ok := w.regions[name]
	if !ok {
		return nil
	}
	out := make([]Structure, 0, len(r.structures))
	for _, s := range r.structures {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b Structure) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

func (w *World) lookup(id string) *Structure {
	for _, r := range w.regions {
		for _, s := range r.structures {
			if s.ID == id {
				return s
			}
		}
	}
	return nil
}

// Alive reports whether the structure id still exists. It is the runner's
// memory pruning predicate.
func (w *World) Alive(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lookup(id) != nil
}

// Repair restores up to amount hits of structure id and returns how many
// were restored.
func (w *World) Repair(id string, amount int) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.lookup(id)
	if s == nil {
		return 0
	}
	n := min(amount, w.opts.MaxHits-s.Hits)
	s.Hits += n
	return n
}

// Ticks returns the number of settled ticks.
func (w *World) Ticks() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ticks
}

// ObserveNode implements core.Observer by charging the task's cost.
func (w *World) ObserveNode(string, error) { w.charge() }

// ObserveSearchStep implements core.Observer by charging the step's cost.
func (w *World) ObserveSearchStep(string, string) { w.charge() }

// ObserveCheckpoint implements core.Observer.
func (w *World) ObserveCheckpoint(string, int) {}

// ObserveTick implements core.Observer. It settles the tick: the bucket
// regains BucketLimit minus the work charged, and structures decay.
// Structures without hits left are destroyed and their tiles freed.
func (w *World) ObserveTick(time.Duration, int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.bucket += w.opts.BucketLimit - w.used*w.opts.NodeCost
	w.bucket = max(0, min(w.bucket, w.opts.BucketMax))
	w.used = 0
	w.ticks++

	for _, r := range w.regions {
		for p, s := range r.structures {
			s.Hits -= w.opts.Decay
			if s.Hits <= 0 {
				delete(r.structures, p)
				r.terrain.Set(p.X, p.Y, tilePlain)
			}
		}
	}
}

func (w *World) charge() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.used++
}

var (
	_ search.Occupancy  = (*World)(nil)
	_ core.BudgetOracle = (*World)(nil)
	_ core.Observer     = (*World)(nil)
	_ construction.Site = (*World)(nil)
)

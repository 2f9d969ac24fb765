package search

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/tickmesh/grid"
	"github.com/hupe1980/tickmesh/queue"
)

// Config tunes a Matrix. Zero fields fall back to DefaultConfig.
type Config struct {
	// TodoCapacity bounds the queue of coarse cells awaiting expansion.
	TodoCapacity int
	// OpenCapacity bounds the queue of confirmed free tiles.
	OpenCapacity int
	// FreeThreshold is the number of free diagonal tiles a cell must exceed
	// to yield candidates.
	FreeThreshold int
}

// DefaultConfig returns the standard search tuning.
func DefaultConfig() Config {
	return Config{TodoCapacity: 128, OpenCapacity: 8, FreeThreshold: 3}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TodoCapacity <= 0 {
		c.TodoCapacity = d.TodoCapacity
	}
	if c.OpenCapacity <= 0 {
		c.OpenCapacity = d.OpenCapacity
	}
	if c.FreeThreshold <= 0 {
		c.FreeThreshold = d.FreeThreshold
	}
	return c
}

var neighbours = [4]Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

// Matrix is the persisted state of one region's search: coarse cells still
// to explore, coarse cells already explored and fine tiles confirmed free.
//
// Invariants:
//   - A coarse cell is expanded at most once until Reset
//   - A cell is never queued twice nor queued after being explored
//   - FindNextPos returns the same tile until PopOpenPos consumes it
type Matrix struct {
	cfg  Config
	todo *queue.Ring[Point]
	done *grid.BitGrid
	open *queue.Ring[Point]
}

// NewEmptyMatrix returns a matrix with nothing queued. It is the decode
// target for persisted state.
func NewEmptyMatrix(cfg Config) *Matrix {
	cfg = cfg.withDefaults()
	return &Matrix{
		cfg:  cfg,
		todo: queue.NewRing[Point](cfg.TodoCapacity),
		done: grid.NewBitGrid(CoarseSize, CoarseSize),
		open: queue.NewRing[Point](cfg.OpenCapacity),
	}
}

// NewMatrix returns a matrix whose search starts at the coarse cell
// containing the fine tile start.
func NewMatrix(start Point, cfg Config) *Matrix {
	m := NewEmptyMatrix(cfg)
	m.enqueue(start.Coarse())
	return m
}

// Reset forgets which cells were explored and restarts the search from the
// cell containing start. Already confirmed tiles are kept.
func (m *Matrix) Reset(start Point) {
	m.done.Reset()
	m.enqueue(start.Coarse())
}

func inCoarse(c Point) bool {
	return c.X >= 0 && c.X < CoarseSize && c.Y >= 0 && c.Y < CoarseSize
}

func (m *Matrix) queued(c Point) bool {
	return m.todo.IndexFunc(func(q Point) bool { return q == c }) >= 0
}

// enqueue adds c to the todo queue unless it is out of bounds, explored,
// already queued or the queue is full.
func (m *Matrix) enqueue(c Point) bool {
	if !inCoarse(c) || m.done.Get(c.X, c.Y) || m.queued(c) {
		return false
	}
	_, err := m.todo.TryPushBack(c)
	return err == nil
}

// FindNextPos returns a free tile of region. A previously confirmed tile is
// returned without any work. Otherwise one coarse cell is expanded: the
// result is the first newly confirmed tile, ErrNoCandidate when the cell
// yielded none, or an *OutOfSpaceError when no cell is left to explore.
// An oracle error is returned with the state untouched.
func (m *Matrix) FindNextPos(region string, occ Occupancy) (Point, error) {
	if p, err := m.open.Front(); err == nil {
		return p, nil
	}
	return m.step(region, occ)
}

// FindNextPosWithin calls FindNextPos until it yields a tile, fails with an
// error other than ErrNoCandidate, or maxSteps cells were expanded.
func (m *Matrix) FindNextPosWithin(region string, occ Occupancy, maxSteps int) (Point, error) {
	err := ErrNoCandidate
	for i := 0; i < maxSteps && errors.Is(err, ErrNoCandidate); i++ {
		var p Point
		if p, err = m.FindNextPos(region, occ); err == nil {
			return p, nil
		}
	}
	return Point{}, err
}

// PopOpenPos consumes the current confirmed tile.
func (m *Matrix) PopOpenPos() (Point, bool) {
	p, err := m.open.TryPopFront()
	return p, err == nil
}

func (m *Matrix) step(region string, occ Occupancy) (Point, error) {
	cell, err := m.todo.Front()
	if err != nil {
		return Point{}, &OutOfSpaceError{Region: region}
	}

	if m.done.Get(cell.X, cell.Y) {
		_, _ = m.todo.TryPopFront()
		return Point{}, ErrNoCandidate
	}

	centre := cell.Centre()
	blocked, err := occ.Blocked(region, Box{Min: centre.Add(-1, -1), Max: centre.Add(1, 1)})
	if err != nil {
		return Point{}, fmt.Errorf("region %s cell %v: %w", region, cell, err)
	}

	_, _ = m.todo.TryPopFront()
	m.done.Set(cell.X, cell.Y, true)

	for _, d := range neighbours {
		m.enqueue(cell.Add(d.X, d.Y))
	}

	taken := make(map[Point]struct{}, len(blocked))
	for _, p := range blocked {
		taken[p] = struct{}{}
	}
	free := func(p Point) bool {
		_, ok := taken[p]
		return p.Buildable() && !ok
	}

	// diagonal tiles decide whether the cell is roomy enough
	corners := 0
	for _, d := range [4]Point{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: 1, Y: 1}} {
		if free(centre.Add(d.X, d.Y)) {
			corners++
		}
	}
	if corners <= m.cfg.FreeThreshold {
		return Point{}, ErrNoCandidate
	}

	if free(centre) {
		_, _ = m.open.TryPushBack(centre)
	}
	for _, d := range neighbours {
		if p := centre.Add(d.X, d.Y); free(p) {
			_, _ = m.open.TryPushBack(p)
		}
	}

	p, err := m.open.Front()
	if err != nil {
		return Point{}, ErrNoCandidate
	}
	return p, nil
}

// Open returns the confirmed free tiles in order.
func (m *Matrix) Open() []Point { return m.open.Slice() }

// Todo returns the coarse cells awaiting expansion in order.
func (m *Matrix) Todo() []Point { return m.todo.Slice() }

// Explored returns the number of expanded coarse cells.
func (m *Matrix) Explored() int { return m.done.Count() }

// IsExplored reports whether the coarse cell c was expanded.
func (m *Matrix) IsExplored(c Point) bool { return inCoarse(c) && m.done.Get(c.X, c.Y) }

type matrixJSON struct {
	Todo *queue.Ring[Point] `json:"todo"`
	Done *grid.BitGrid      `json:"done"`
	Open *queue.Ring[Point] `json:"open"`
}

// MarshalJSON encodes the whole search state.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON{Todo: m.todo, Done: m.done, Open: m.open})
}

// UnmarshalJSON restores the search state. On error the matrix is unchanged.
// A queue longer than its capacity fails with queue.ErrTooLarge and a bad
// grid with grid.ErrDecode.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	fresh := NewEmptyMatrix(m.cfg)
	aux := matrixJSON{Todo: fresh.todo, Done: fresh.done, Open: fresh.open}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Todo != nil {
		fresh.todo = aux.Todo
	}
	if aux.Done != nil {
		fresh.done = aux.Done
	}
	if aux.Open != nil {
		fresh.open = aux.Open
	}

	*m = *fresh
	return nil
}

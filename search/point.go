package search

import (
	"encoding/json"
	"fmt"
)

const (
	// RegionSize is the width and height of a region in fine tiles.
	RegionSize = 50
	// CellSize is the width and height of a coarse cell in fine tiles.
	CellSize = 3
	// CoarseSize is the width and height of a region in coarse cells.
	CoarseSize = (RegionSize + CellSize - 1) / CellSize

	// MinBuildable and MaxBuildable bound the fine tiles that can be placed on.
	MinBuildable = 1
	MaxBuildable = RegionSize - 2
)

// Point is a tile coordinate. It marshals as a two element JSON array.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy int) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Buildable reports whether p lies in the buildable area of a region.
func (p Point) Buildable() bool {
	return p.X >= MinBuildable && p.X <= MaxBuildable && p.Y >= MinBuildable && p.Y <= MaxBuildable
}

// Coarse returns the coarse cell containing the fine tile p. Tiles left of
// or above the region map to negative cells.
func (p Point) Coarse() Point { return Point{X: floorDiv(p.X, CellSize), Y: floorDiv(p.Y, CellSize)} }

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Centre returns the fine tile at the centre of the coarse cell p.
func (p Point) Centre() Point {
	return Point{X: p.X*CellSize + CellSize/2, Y: p.Y*CellSize + CellSize/2}
}

func (p Point) String() string { return fmt.Sprintf("(%d, %d)", p.X, p.Y) }

// MarshalJSON encodes p as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON decodes p from [x, y].
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy [2]int
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// Box is an inclusive rectangle of fine tiles.
type Box struct {
	Min, Max Point
}

// Contains reports whether p lies in b.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Occupancy is the host oracle answering which fine tiles are blocked.
type Occupancy interface {
	// Blocked returns the blocked tiles of region inside box.
	Blocked(region string, box Box) ([]Point, error)
}

// OccupancyFunc adapts a plain function to the Occupancy interface.
type OccupancyFunc func(region string, box Box) ([]Point, error)

// Blocked implements Occupancy.
func (f OccupancyFunc) Blocked(region string, box Box) ([]Point, error) { return f(region, box) }

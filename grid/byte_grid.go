package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ByteGrid is a rows×cols grid holding one byte per cell.
type ByteGrid struct {
	rows, cols int
	cells      []byte
}

// NewByteGrid allocates a zeroed grid. It panics if a dimension is not positive.
func NewByteGrid(rows, cols int) *ByteGrid {
	checkDims(rows, cols)
	return &ByteGrid{rows: rows, cols: cols, cells: make([]byte, rows*cols)}
}

func checkDims(rows, cols int) {
	if rows < 1 || cols < 1 {
		panic(fmt.Sprintf("grid: dimensions must be positive, got %d×%d", rows, cols))
	}
}

// Rows returns the number of rows.
func (g *ByteGrid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *ByteGrid) Cols() int { return g.cols }

// InBounds reports whether (x, y) addresses a cell.
func (g *ByteGrid) InBounds(x, y int) bool {
	return 0 <= x && x < g.rows && 0 <= y && y < g.cols
}

func (g *ByteGrid) index(x, y int) int {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("grid: (%d, %d) out of range %d×%d", x, y, g.rows, g.cols))
	}
	return x*g.cols + y
}

// Get returns the cell value at (x, y).
func (g *ByteGrid) Get(x, y int) byte { return g.cells[g.index(x, y)] }

// Set stores v at (x, y).
func (g *ByteGrid) Set(x, y int, v byte) { g.cells[g.index(x, y)] = v }

// Fill sets every cell to v.
func (g *ByteGrid) Fill(v byte) {
	for i := range g.cells {
		g.cells[i] = v
	}
}

// Equal reports whether both grids have the same dimensions and cells.
func (g *ByteGrid) Equal(o *ByteGrid) bool {
	return g.rows == o.rows && g.cols == o.cols && bytes.Equal(g.cells, o.cells)
}

// Clone returns an independent copy.
func (g *ByteGrid) Clone() *ByteGrid {
	return &ByteGrid{rows: g.rows, cols: g.cols, cells: bytes.Clone(g.cells)}
}

// Compressed returns the run-length encoding of the cells in storage order.
func (g *ByteGrid) Compressed() string { return compress(g.cells) }

// Decompress replaces the cells with the decoded content of s. The total run
// length must equal rows×cols.
func (g *ByteGrid) Decompress(s string) error {
	cells, err := decompress(s, len(g.cells))
	if err != nil {
		return err
	}
	g.cells = cells
	return nil
}

// MarshalJSON encodes the grid as its compressed string.
func (g *ByteGrid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Compressed())
}

// UnmarshalJSON decodes a compressed string into a grid whose dimensions are
// already set.
func (g *ByteGrid) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return g.Decompress(s)
}

package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/bits"
)

// BitGrid is a rows×cols grid of flags packed eight cells per byte. The
// flat index x*cols+y selects byte index/8 and bit index%8.
type BitGrid struct {
	rows, cols int
	buf        []byte
}

// NewBitGrid allocates a cleared grid. It panics if a dimension is not positive.
func NewBitGrid(rows, cols int) *BitGrid {
	checkDims(rows, cols)
	return &BitGrid{rows: rows, cols: cols, buf: make([]byte, (rows*cols+7)/8)}
}

// Rows returns the number of rows.
func (g *BitGrid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *BitGrid) Cols() int { return g.cols }

// StorageLen returns the number of backing bytes, which is also the total
// run length of the compressed form.
func (g *BitGrid) StorageLen() int { return len(g.buf) }

// InBounds reports whether (x, y) addresses a cell.
func (g *BitGrid) InBounds(x, y int) bool {
	return 0 <= x && x < g.rows && 0 <= y && y < g.cols
}

func (g *BitGrid) locate(x, y int) (int, byte) {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("grid: (%d, %d) out of range %d×%d", x, y, g.rows, g.cols))
	}
	flat := x*g.cols + y
	return flat / 8, 1 << uint(flat%8)
}

// Get reports whether the flag at (x, y) is set.
func (g *BitGrid) Get(x, y int) bool {
	i, mask := g.locate(x, y)
	return g.buf[i]&mask != 0
}

// Set sets or clears the flag at (x, y).
func (g *BitGrid) Set(x, y int, v bool) {
	i, mask := g.locate(x, y)
	if v {
		g.buf[i] |= mask
	} else {
		g.buf[i] &^= mask
	}
}

// Count returns the number of set flags.
func (g *BitGrid) Count() int {
	n := 0
	for _, b := range g.buf {
		n += bits.OnesCount8(b)
	}
	return n
}

// Reset clears every flag.
func (g *BitGrid) Reset() {
	for i := range g.buf {
		g.buf[i] = 0
	}
}

// Equal reports whether both grids have the same dimensions and flags.
func (g *BitGrid) Equal(o *BitGrid) bool {
	return g.rows == o.rows && g.cols == o.cols && bytes.Equal(g.buf, o.buf)
}

// Clone returns an independent copy.
func (g *BitGrid) Clone() *BitGrid {
	return &BitGrid{rows: g.rows, cols: g.cols, buf: bytes.Clone(g.buf)}
}

// Compressed returns the run-length encoding of the backing bytes.
func (g *BitGrid) Compressed() string { return compress(g.buf) }

// Decompress replaces the flags with the decoded content of s. The total run
// length must equal StorageLen. Bits past rows×cols are cleared.
func (g *BitGrid) Decompress(s string) error {
	buf, err := decompress(s, len(g.buf))
	if err != nil {
		return err
	}
	if pad := len(buf)*8 - g.rows*g.cols; pad > 0 {
		buf[len(buf)-1] &= 0xff >> uint(pad)
	}
	g.buf = buf
	return nil
}

// MarshalJSON encodes the grid as its compressed string.
func (g *BitGrid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Compressed())
}

// UnmarshalJSON decodes a compressed string into a grid whose dimensions are
// already set.
func (g *BitGrid) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return g.Decompress(s)
}

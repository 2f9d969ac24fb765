// Package grid provides fixed-dimension 2D grids with a run-length string
// encoding small enough for size-capped checkpoints.
//
// ByteGrid stores one byte per cell, BitGrid one bit per cell. Both address a
// cell (x, y) through the flat index x*cols+y and both compress their backing
// storage to tokens of the form "<value>_<run>" joined by ";":
//
//	g := grid.NewByteGrid(50, 50)
//	g.Compressed() // "0_2500"
//
// Decompress is the exact inverse. It never writes past the grid's storage:
// malformed tokens and run totals that do not match the storage length fail
// with ErrDecode and leave the grid unchanged.
package grid

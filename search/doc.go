// Package search implements an incremental flood-fill over a region to find
// free tiles without exceeding a bounded amount of work per call.
//
// A region is a 50×50 grid of fine tiles batched into 3×3 coarse cells. The
// Matrix expands at most one coarse cell per step, asking an Occupancy
// oracle which fine tiles in that cell are blocked, and keeps confirmed free
// tiles in a small queue until the caller consumes them. The whole state
// serializes to JSON so a search can continue across ticks.
package search

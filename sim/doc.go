// Package sim provides a deterministic host for running behavior trees
// outside a live game: seeded terrain, a regenerating execution budget and
// structures that decay unless repaired.
//
// A World plays every host role at once. It is the occupancy oracle for
// the placement search, the budget oracle of the runner, the construction
// site and an observer that charges executed work against the bucket.
package sim

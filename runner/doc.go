// Package runner implements the per-invocation driver of tickmesh.
//
// The host calls Runner.Tick exactly once per host tick. A tick samples the
// budget, restores entity memory and the registered checkpoints, ticks the
// root node once, periodically prunes memory of dead entities and commits
// everything back to the checkpoint store. A failing root never aborts the
// runner; it is reported and the next tick simply tries again.
//
// See runner.go for the operational implementation details.
package runner

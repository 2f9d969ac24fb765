// Package core provides the foundational types, interfaces and execution
// context used by tickmesh. It defines the core abstractions for:
//
//   - Nodes (tasks and controls ticked once per host invocation)
//   - TickContext (the mutable scope threaded through one tree walk)
//   - Oracles consumed from the host (budget, checkpoint storage)
//   - Memory (persisted per-entity scratch such as the last executed branch)
//   - The error taxonomy shared by nodes, controls and the runner
//
// The package intentionally keeps implementation concerns (persistence,
// concrete nodes, search) out of scope, exposing small interfaces to
// enable custom backends and extensions.
package core

// Package node provides the behavior tree building blocks of tickmesh.
//
// A Task is a named, prioritized, budget-gated leaf wrapping an action.
// A Control composes up to MaxChildren nodes with one of three policies:
//
//   - Selector: tick children in order, stop at the first failure
//   - Sequence: tick every child once, succeed if any child succeeded
//   - All: tick every child once, always succeed
//
// There is no running state and no retry inside the engine. A failed node
// is simply ticked again on the next host invocation.
package node

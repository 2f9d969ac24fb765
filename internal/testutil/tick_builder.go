package testutil

import (
	"context"

	"github.com/hupe1980/tickmesh/core"
	"github.com/hupe1980/tickmesh/logging"
)

// TickContextBuilder provides a fluent helper for constructing tick contexts in tests.
// Example:
//
//	tc := NewTickContextBuilder().Time(42).Budget(5000).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type TickContextBuilder struct {
	ctx      context.Context
	id       string
	time     uint64
	budget   core.BudgetOracle
	memory   *core.Memory
	store    core.CheckpointStore
	observer core.Observer
	logger   logging.Logger
}

// NewTickContextBuilder creates a builder for tick 1 with an unknown budget.
func NewTickContextBuilder() *TickContextBuilder {
	return &TickContextBuilder{ctx: context.Background(), id: "test-tick", time: 1, budget: core.UnknownBudget{}}
}

// Context sets the host context (chainable).
func (b *TickContextBuilder) Context(ctx context.Context) *TickContextBuilder {
	b.ctx = ctx
	return b
}

// ID overrides the tick identifier (chainable).
func (b *TickContextBuilder) ID(id string) *TickContextBuilder { b.id = id; return b }

// Time sets the host tick number (chainable).
func (b *TickContextBuilder) Time(t uint64) *TickContextBuilder { b.time = t; return b }

// Budget sets a known budget (chainable).
func (b *TickContextBuilder) Budget(n int) *TickContextBuilder {
	b.budget = core.FixedBudget(n)
	return b
}

// Memory sets the entity memory (chainable).
func (b *TickContextBuilder) Memory(m *core.Memory) *TickContextBuilder { b.memory = m; return b }

// Store sets the checkpoint store (chainable).
func (b *TickContextBuilder) Store(s core.CheckpointStore) *TickContextBuilder { b.store = s; return b }

// Observer sets the observer (chainable).
func (b *TickContextBuilder) Observer(o core.Observer) *TickContextBuilder { b.observer = o; return b }

// Logger sets the logger (chainable).
func (b *TickContextBuilder) Logger(l logging.Logger) *TickContextBuilder { b.logger = l; return b }

// Build returns the constructed tick context.
func (b *TickContextBuilder) Build() *core.TickContext {
	return core.NewTickContext(b.ctx, b.id, b.time, b.budget, b.memory, b.store, b.observer, b.logger)
}

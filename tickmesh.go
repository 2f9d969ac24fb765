// Package tickmesh provides a high-level façade over the tick runner and its
// services (checkpoint store, logging & metrics) for driving behavior trees
// from a host that calls in once per tick. Most applications interact with
// this package by:
//  1. Building a tree from node.NewTask, node.NewSelector, node.NewSequence
//     and node.NewAll
//  2. Creating a Mesh via New() (optionally overriding the in-memory store)
//  3. Calling Tick once per host tick, or Run for a batch of ticks
//
// All defaults are safe for local development and testing; production
// deployments typically supply a durable store (see checkpoint/badger), a
// budget oracle and a structured logger.
package tickmesh

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/tickmesh/checkpoint"
	"github.com/hupe1980/tickmesh/core"
	"github.com/hupe1980/tickmesh/logging"
	"github.com/hupe1980/tickmesh/metrics"
	"github.com/hupe1980/tickmesh/runner"
)

// Options configures the Mesh instance.
type Options struct {
	// Store persists memory and checkpoints (defaults to an in-memory store).
	Store checkpoint.Store

	// Budget is sampled once per tick (defaults to an unknown budget, which
	// admits every task).
	Budget core.BudgetOracle

	// Registerer receives the Prometheus collectors. Nil disables metrics.
	Registerer prometheus.Registerer

	// Observers receive execution measurements alongside the metrics
	// recorder.
	Observers []core.Observer

	// MemoryKey and PruneInterval are passed to the runner.
	MemoryKey     string
	PruneInterval uint64

	// Alive reports whether an entity still exists. Nil disables pruning.
	Alive func(entity string) bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Mesh is the high-level façade aggregating the runner and its services.
type Mesh struct {
	opts    Options
	runner  *runner.Runner
	metrics *metrics.Recorder
}

// New creates a Mesh driving root with optional overrides. Any unset
// service is initialized with an in-memory or no-op implementation.
func New(root core.Node, optFns ...func(o *Options)) *Mesh {
	opts := Options{
		Store:         checkpoint.NewMemoryStore(),
		Budget:        core.UnknownBudget{},
		MemoryKey:     "memory",
		PruneInterval: 16,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	m := &Mesh{opts: opts}

	observers := append(core.MultiObserver(nil), opts.Observers...)
	if opts.Registerer != nil {
		m.metrics = metrics.NewRecorder(opts.Registerer)
		observers = append(observers, m.metrics)
	}

	m.runner = runner.New(root, func(o *runner.Options) {
		o.Store = opts.Store
		o.Budget = opts.Budget
		o.Observer = observers
		o.Logger = opts.Logger
		o.MemoryKey = opts.MemoryKey
		o.PruneInterval = opts.PruneInterval
		o.Alive = opts.Alive
	})

	return m
}

// Tick runs one host tick at host time tick.
func (m *Mesh) Tick(ctx context.Context, tick uint64) runner.Report {
	return m.runner.Tick(ctx, tick)
}

// Run calls Tick for n consecutive host ticks starting at from.
func (m *Mesh) Run(ctx context.Context, from uint64, n int, onReport func(runner.Report)) error {
	return m.runner.Run(ctx, from, n, onReport)
}

// Store returns the checkpoint store.
func (m *Mesh) Store() checkpoint.Store { return m.opts.Store }

// Metrics returns the metrics recorder, or nil when metrics are disabled.
func (m *Mesh) Metrics() *metrics.Recorder { return m.metrics }

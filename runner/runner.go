package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/tickmesh/checkpoint"
	"github.com/hupe1980/tickmesh/core"
	"github.com/hupe1980/tickmesh/logging"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Store persists memory and checkpoints between ticks.
	Store checkpoint.Store
	// Budget is sampled once at the start of every tick.
	Budget core.BudgetOracle
	// Observer receives execution measurements.
	Observer core.Observer
	// Logger receives runner and node logs.
	Logger logging.Logger
	// MemoryKey is the checkpoint key entity memory is stored under.
	MemoryKey string
	// PruneInterval is how often, in host ticks, memory is pruned.
	PruneInterval uint64
	// Alive reports whether an entity still exists. Nil disables pruning.
	Alive func(entity string) bool
}

// Report summarizes one tick.
type Report struct {
	TickID        string
	Time          uint64
	Budget        int
	BudgetKnown   bool
	RootErr       error
	CheckpointErr error
	Pruned        int
	Duration      time.Duration
}

// Err returns the root and checkpoint errors joined.
func (r Report) Err() error { return errors.Join(r.RootErr, r.CheckpointErr) }

// Runner drives a root node once per host tick. Tick calls are serialized.
type Runner struct {
	root core.Node

	store         checkpoint.Store
	budget        core.BudgetOracle
	observer      core.Observer
	logger        logging.Logger
	memoryKey     string
	pruneInterval uint64
	alive         func(entity string) bool

	mu sync.Mutex
}

// New constructs a Runner with optional overrides.
func New(root core.Node, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Store:         checkpoint.NewMemoryStore(),
		Budget:        core.UnknownBudget{},
		Observer:      core.NoOpObserver{},
		Logger:        logging.NoOpLogger{},
		MemoryKey:     "memory",
		PruneInterval: 16,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.PruneInterval == 0 {
		opts.PruneInterval = 1
	}
	if opts.Observer == nil {
		opts.Observer = core.NoOpObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Runner{
		root:          root,
		store:         opts.Store,
		budget:        opts.Budget,
		observer:      opts.Observer,
		logger:        opts.Logger,
		memoryKey:     opts.MemoryKey,
		pruneInterval: opts.PruneInterval,
		alive:         opts.Alive,
	}
}

// Tick runs one host tick at host time tick.
func (r *Runner) Tick(ctx context.Context, tick uint64) Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	tickID := core.NewID()

	logger := r.logger
	if tl, ok := logger.(*logging.TickLogger); ok {
		logger = tl.WithTick(tickID, tick)
	}

	memory := core.NewMemory()
	tc := core.NewTickContext(ctx, tickID, tick, r.budget, memory, r.store, r.observer, logger)

	if err := tc.Checkpoint(r.memoryKey, memory); err != nil {
		if errors.Is(err, core.ErrCheckpointCorrupt) {
			tc.LogWarn("Discarding corrupt memory", "error", err.Error())
		} else {
			tc.LogWarn("Memory unavailable, starting empty", "error", err.Error())
		}
	}

	budget, known := tc.Budget()
	report := Report{TickID: tickID, Time: tick, Budget: budget, BudgetKnown: known}

	if err := r.root.Tick(tc); err != nil {
		report.RootErr = fmt.Errorf("root %q: %w", r.root.Name(), err)
		tc.LogWarn("Root failed", "root", r.root.Name(), "error", err.Error())
	}

	if r.alive != nil && tick%r.pruneInterval == 0 {
		report.Pruned = memory.Prune(r.alive)
		if report.Pruned > 0 {
			tc.LogDebug("Pruned memory", "entities", report.Pruned)
		}
	}

	report.CheckpointErr = tc.CommitCheckpoints()

	report.Duration = time.Since(start)
	r.observer.ObserveTick(report.Duration, budget, known)

	tc.LogDebug("Tick completed", "duration", report.Duration, "budget", budget, "budget_known", known)

	return report
}

// Run calls Tick for n consecutive host ticks starting at from, passing
// every report to onReport (which may be nil). It stops early when ctx is
// cancelled and returns the context error.
func (r *Runner) Run(ctx context.Context, from uint64, n int, onReport func(Report)) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		report := r.Tick(ctx, from+uint64(i))
		if onReport != nil {
			onReport(report)
		}
	}
	return nil
}

package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/tickmesh/logging"
)

// TickContext carries execution state & helpers for one tick of the tree.
// It encapsulates the mutable, per-invocation scope passed to every Node's
// Tick method. It aggregates:
//   - The ambient host Context
//   - Identifiers (TickID and the host's tick number)
//   - The budget sampled once when the context is built
//   - Persisted entity Memory
//   - Checkpointed component state registered during the tick
//
// Values registered through Checkpoint accumulate until CommitCheckpoints
// serializes them back to the store. A TickContext is built fresh for every
// tick and must not be retained across ticks.
type TickContext struct {
	Context context.Context
	TickID  string
	Time    uint64
	Memory  *Memory

	budget      budgetSample
	store       CheckpointStore
	observer    Observer
	checkpoints map[string]any
	order       []string

	*loggerAdapter
}

// NewTickContext constructs a TickContext. The budget oracle is queried
// exactly once, here. Nil memory, observer and logger are replaced by empty
// or no-op implementations; a nil store disables checkpointing.
func NewTickContext(
	ctx context.Context,
	tickID string,
	time uint64,
	budget BudgetOracle,
	memory *Memory,
	store CheckpointStore,
	observer Observer,
	logger logging.Logger,
) *TickContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if memory == nil {
		memory = NewMemory()
	}
	if observer == nil {
		observer = NoOpObserver{}
	}

	return &TickContext{
		Context:       ctx,
		TickID:        tickID,
		Time:          time,
		Memory:        memory,
		budget:        sampleBudget(budget),
		store:         store,
		observer:      observer,
		checkpoints:   map[string]any{},
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Budget returns the budget sampled for this tick and whether it is known.
func (tc *TickContext) Budget() (int, bool) { return tc.budget.amount, tc.budget.known }

// AdmitsBudget reports whether the sampled budget satisfies required.
func (tc *TickContext) AdmitsBudget(required int) bool { return tc.budget.admits(required) }

// Observer returns the tick's observer. It is never nil.
func (tc *TickContext) Observer() Observer { return tc.observer }

// Checkpoint loads the value stored under key into v and registers v so that
// CommitCheckpoints writes it back. v must be a pointer (or implement
// json.Unmarshaler) and should decode atomically. A missing key leaves v
// untouched. A value that fails to decode is still registered, so it is
// replaced at commit, and the decode error is returned wrapping
// ErrCheckpointCorrupt.
func (tc *TickContext) Checkpoint(key string, v any) error {
	if _, ok := tc.checkpoints[key]; ok {
		return fmt.Errorf("%w: %s", ErrCheckpointExists, key)
	}

	var decodeErr error
	if tc.store != nil {
		raw, ok, err := tc.store.Get(key)
		if err != nil {
			return fmt.Errorf("checkpoint %s: %w", key, err)
		}
		if ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), v); err != nil {
				decodeErr = fmt.Errorf("%w: %s: %w", ErrCheckpointCorrupt, key, err)
			}
		}
	}

	tc.checkpoints[key] = v
	tc.order = append(tc.order, key)

	return decodeErr
}

// Checkpointed returns the value registered under key during this tick.
func (tc *TickContext) Checkpointed(key string) (any, bool) {
	v, ok := tc.checkpoints[key]
	return v, ok
}

// CommitCheckpoints serializes every registered value back to the store in
// registration order. Every value is attempted; failures are joined.
func (tc *TickContext) CommitCheckpoints() error {
	if tc.store == nil || len(tc.order) == 0 {
		return nil
	}

	var errs []error
	for _, key := range tc.order {
		raw, err := json.Marshal(tc.checkpoints[key])
		if err != nil {
			errs = append(errs, fmt.Errorf("checkpoint %s: %w", key, err))
			continue
		}
		if err := tc.store.Set(key, string(raw)); err != nil {
			tc.LogError("Checkpoint write failed", "key", key, "bytes", len(raw), "error", err.Error())
			errs = append(errs, fmt.Errorf("checkpoint %s: %w", key, err))
			continue
		}
		tc.observer.ObserveCheckpoint(key, len(raw))
	}

	return errors.Join(errs...)
}

// Done returns a channel closed when the underlying context is cancelled.
func (tc *TickContext) Done() <-chan struct{} { return tc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (tc *TickContext) Err() error { return tc.Context.Err() }

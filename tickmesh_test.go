package tickmesh

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tickmesh/checkpoint"
	"github.com/hupe1980/tickmesh/core"
	"github.com/hupe1980/tickmesh/internal/testutil"
	"github.com/hupe1980/tickmesh/node"
)

func counterTree(calls *int) core.Node {
	return node.NewSequence("root",
		node.NewTask("count", func(tc *core.TickContext) error {
			*calls++
			n, _ := tc.Memory.Int("colony", "ticks")
			return tc.Memory.Set("colony", "ticks", n+1)
		}),
		node.NewTask("gated", func(*core.TickContext) error { return nil },
			node.WithRequiredBudget(1000)),
	)
}

func TestNew_Defaults(t *testing.T) {
	calls := 0
	m := New(counterTree(&calls))

	report := m.Tick(context.Background(), 1)

	require.NoError(t, report.Err())
	assert.Equal(t, 1, calls)
	assert.False(t, report.BudgetKnown)
	assert.Nil(t, m.Metrics())
	assert.IsType(t, &checkpoint.MemoryStore{}, m.Store())
}

func TestMesh_RunPersistsMemory(t *testing.T) {
	calls := 0
	store := checkpoint.NewMemoryStore()
	m := New(counterTree(&calls), func(o *Options) { o.Store = store })

	require.NoError(t, m.Run(context.Background(), 10, 3, nil))

	memory := core.NewMemory()
	require.NoError(t, checkpoint.Load(store, "memory", memory))
	ticks, ok := memory.Int("colony", "ticks")
	require.True(t, ok)
	assert.Equal(t, 3, ticks)
}

func TestMesh_MetricsAndObservers(t *testing.T) {
	calls := 0
	reg := prometheus.NewRegistry()
	obs := testutil.NewRecordingObserver()
	m := New(counterTree(&calls), func(o *Options) {
		o.Registerer = reg
		o.Observers = []core.Observer{obs}
		o.Budget = core.FixedBudget(500)
	})

	report := m.Tick(context.Background(), 1)

	require.NoError(t, report.RootErr, "the sequence succeeds when any child does")
	require.NotNil(t, m.Metrics())
	assert.Equal(t, 1, obs.Ticks)
	require.Len(t, obs.Nodes, 2)
	assert.True(t, errors.Is(obs.Nodes[1].Err, core.ErrBudgetNotMet))

	n, err := promtestutil.GatherAndCount(reg, "tickmesh_node_ticks_total", "tickmesh_budget_rejections_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

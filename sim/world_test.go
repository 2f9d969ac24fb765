package sim

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tickmesh/checkpoint"
	"github.com/hupe1980/tickmesh/construction"
	"github.com/hupe1980/tickmesh/core"
	"github.com/hupe1980/tickmesh/internal/testutil"
	"github.com/hupe1980/tickmesh/logging"
	"github.com/hupe1980/tickmesh/node"
	"github.com/hupe1980/tickmesh/runner"
	"github.com/hupe1980/tickmesh/search"
)

var wholeRegion = search.Box{Min: search.Pt(0, 0), Max: search.Pt(search.RegionSize-1, search.RegionSize-1)}

func openWorld(optFns ...func(o *Options)) *World {
	return NewWorld(append([]func(o *Options){func(o *Options) {
		o.WallDensity = 0
		o.Decay = 0
	}}, optFns...)...)
}

func TestWorld_TerrainIsDeterministic(t *testing.T) {
	regions := func(o *Options) {
		o.Seed = 7
		o.Regions = []string{"W1N1", "W2N1"}
	}
	a, b := NewWorld(regions), NewWorld(regions)

	for _, name := range []string{"W1N1", "W2N1"} {
		wa, err := a.Blocked(name, wholeRegion)
		require.NoError(t, err)
		wb, err := b.Blocked(name, wholeRegion)
		require.NoError(t, err)
		assert.Equal(t, wa, wb)
		assert.NotEmpty(t, wa)
	}

	w1, _ := a.Blocked("W1N1", wholeRegion)
	w2, _ := a.Blocked("W2N1", wholeRegion)
	assert.NotEqual(t, w1, w2, "regions get their own terrain")
}

func TestWorld_AnchorCellIsClear(t *testing.T) {
	w := NewWorld(func(o *Options) { o.WallDensity = 1 })

	anchor, ok := w.Anchor("W1N1")
	require.True(t, ok)
	blocked, err := w.Blocked("W1N1", search.Box{Min: anchor.Add(-1, -1), Max: anchor.Add(1, 1)})

	require.NoError(t, err)
	assert.Empty(t, blocked)
}

func TestWorld_UnknownRegion(t *testing.T) {
	w := openWorld()

	_, err := w.Blocked("E9S9", wholeRegion)
	assert.ErrorIs(t, err, ErrUnknownRegion)

	_, ok := w.Anchor("E9S9")
	assert.False(t, ok)
	assert.Nil(t, w.Wanted("E9S9", 2))
	assert.Equal(t, construction.Rejected, w.Place("E9S9", search.Pt(25, 25), "road"))
}

func TestWorld_BlockedClipsToRegion(t *testing.T) {
	w := NewWorld(func(o *Options) { o.WallDensity = 1 })

	blocked, err := w.Blocked("W1N1", search.Box{Min: search.Pt(48, 48), Max: search.Pt(50, 50)})

	require.NoError(t, err)
	assert.ElementsMatch(t, []search.Point{search.Pt(48, 48), search.Pt(48, 49), search.Pt(49, 48), search.Pt(49, 49)}, blocked)
}

func TestWorld_Place(t *testing.T) {
	w := openWorld(func(o *Options) { o.StructuresPerRoom = 2 })

	assert.Equal(t, construction.InvalidTarget, w.Place("W1N1", search.Pt(0, 10), "road"), "edge tiles are not buildable")
	assert.Equal(t, construction.Placed, w.Place("W1N1", search.Pt(10, 10), "road"))
	assert.Equal(t, construction.InvalidTarget, w.Place("W1N1", search.Pt(10, 10), "road"), "tile is taken")
	assert.Equal(t, construction.Placed, w.Place("W1N1", search.Pt(11, 10), "tower"))
	assert.Equal(t, construction.Full, w.Place("W1N1", search.Pt(12, 10), "road"))

	blocked, err := w.Blocked("W1N1", wholeRegion)
	require.NoError(t, err)
	assert.ElementsMatch(t, []search.Point{search.Pt(10, 10), search.Pt(11, 10)}, blocked)

	structures := w.Structures("W1N1")
	require.Len(t, structures, 2)
	assert.Equal(t, "W1N1/road/10,10", structures[0].ID)
	assert.True(t, w.Alive("W1N1/tower/11,10"))
}

func TestWorld_PlaceOnWall(t *testing.T) {
	w := NewWorld(func(o *Options) { o.WallDensity = 1 })

	assert.Equal(t, construction.InvalidTarget, w.Place("W1N1", search.Pt(10, 10), "road"))
}

func TestWorld_WantedCyclesBuildOrder(t *testing.T) {
	w := openWorld(func(o *Options) {
		o.Kinds = []string{"a", "b", "c"}
		o.StructuresPerRoom = 3
	})

	assert.Equal(t, []string{"a", "b"}, w.Wanted("W1N1", 2))
	require.Equal(t, construction.Placed, w.Place("W1N1", search.Pt(10, 10), "a"))
	require.Equal(t, construction.Placed, w.Place("W1N1", search.Pt(11, 10), "b"))
	assert.Equal(t, []string{"c"}, w.Wanted("W1N1", 2), "capped by the room limit")
	require.Equal(t, construction.Placed, w.Place("W1N1", search.Pt(12, 10), "c"))
	assert.Empty(t, w.Wanted("W1N1", 2))
}

func TestWorld_BucketSettlesPerTick(t *testing.T) {
	w := openWorld(func(o *Options) {
		o.BucketStart = 1000
		o.BucketLimit = 20
		o.BucketMax = 1030
		o.NodeCost = 10
	})

	w.ObserveNode("construction", nil)
	w.ObserveSearchStep("W1N1", construction.OutcomeCandidate)
	w.ObserveSearchStep("W1N1", construction.OutcomeNone)
	w.ObserveTick(0, 1000, true)
	assert.Equal(t, 990, w.Bucket())

	w.ObserveTick(0, 990, true)
	w.ObserveTick(0, 1010, true)
	w.ObserveTick(0, 1030, true)
	assert.Equal(t, 1030, w.Bucket(), "capped at the maximum")
	assert.Equal(t, uint64(4), w.Ticks())

	for i := 0; i < 200; i++ {
		w.ObserveNode("construction", nil)
	}
	w.ObserveTick(0, 1030, true)
	assert.Equal(t, 0, w.Bucket(), "never negative")

	budget, known := w.Available()
	assert.True(t, known)
	assert.Equal(t, 0, budget)
}

func TestWorld_DecayDestroysStructures(t *testing.T) {
	w := openWorld(func(o *Options) {
		o.MaxHits = 2
		o.Decay = 1
	})
	require.Equal(t, construction.Placed, w.Place("W1N1", search.Pt(10, 10), "road"))
	id := "W1N1/road/10,10"

	w.ObserveTick(0, 0, true)
	assert.True(t, w.Alive(id))
	w.ObserveTick(0, 0, true)
	assert.False(t, w.Alive(id))

	blocked, err := w.Blocked("W1N1", wholeRegion)
	require.NoError(t, err)
	assert.Empty(t, blocked, "the tile is freed")
}

func TestRepairTask(t *testing.T) {
	w := openWorld(func(o *Options) { o.MaxHits = 100 })
	require.Equal(t, construction.Placed, w.Place("W1N1", search.Pt(10, 10), "road"))
	require.Equal(t, construction.Placed, w.Place("W1N1", search.Pt(11, 10), "tower"))
	w.regions["W1N1"].structures[search.Pt(10, 10)].Hits = 30
	w.regions["W1N1"].structures[search.Pt(11, 10)].Hits = 10

	task := NewRepairTask(w, func(o *RepairOptions) { o.Amount = 25 })
	memory := core.NewMemory()
	tc := testutil.NewTickContextBuilder().Time(9).Memory(memory).Build()

	require.NoError(t, task.Tick(tc))
	require.NoError(t, task.Tick(tc))

	structures := w.Structures("W1N1")
	assert.Equal(t, 55, structures[0].Hits, "road repaired once")
	assert.Equal(t, 35, structures[1].Hits, "tower repaired once")

	repairs, ok := memory.Int("W1N1/tower/11,10", KeyRepairs)
	require.True(t, ok)
	assert.Equal(t, 1, repairs)
	last, ok := memory.Int("W1N1/road/10,10", KeyLastRepair)
	require.True(t, ok)
	assert.Equal(t, 9, last)
}

func TestRepairTask_LogsStructureAsEntity(t *testing.T) {
	w := openWorld(func(o *Options) { o.MaxHits = 100 })
	require.Equal(t, construction.Placed, w.Place("W1N1", search.Pt(10, 10), "road"))
	w.regions["W1N1"].structures[search.Pt(10, 10)].Hits = 30

	var buf bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "json", Output: &buf})
	tc := testutil.NewTickContextBuilder().Logger(logger).Build()

	require.NoError(t, NewRepairTask(w).Tick(tc))

	assert.Contains(t, buf.String(), `"msg":"Structure repaired"`)
	assert.Contains(t, buf.String(), `"entity":"W1N1/road/10,10"`)
}

func TestRepairTask_NothingToRepair(t *testing.T) {
	w := openWorld()
	task := NewRepairTask(w)

	err := task.Tick(testutil.NewTickContextBuilder().Build())

	assert.Error(t, err)
	assert.Equal(t, 500, task.RequiredBudget())
}

func TestWorld_DrivesRunner(t *testing.T) {
	w := NewWorld(func(o *Options) {
		o.Seed = 3
		o.Regions = []string{"W1N1", "W2N1"}
		o.StructuresPerRoom = 10
		o.MaxHits = 1000
	})
	planner := construction.NewPlanner(w, w, func(o *construction.Options) {
		o.Regions = w.Regions()
		o.MaxSteps = 8
	})
	root := node.NewAll("root", planner.Task(), NewRepairTask(w))
	store := checkpoint.NewMemoryStore()
	obs := testutil.NewRecordingObserver()
	r := runner.New(root, func(o *runner.Options) {
		o.Store = store
		o.Budget = w
		o.Observer = core.MultiObserver{w, obs}
		o.Alive = w.Alive
	})

	require.NoError(t, r.Run(context.Background(), 0, 40, func(rep runner.Report) {
		assert.NoError(t, rep.CheckpointErr)
	}))

	assert.Equal(t, 40, obs.Ticks)
	assert.Equal(t, uint64(40), w.Ticks())
	assert.Less(t, w.Bucket(), 6000, "work is charged against the bucket")

	for _, name := range w.Regions() {
		structures := w.Structures(name)
		assert.NotEmpty(t, structures, name)
		for _, s := range structures {
			assert.True(t, s.Pos.Buildable())
		}
	}

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"construction", "memory"}, keys)
}

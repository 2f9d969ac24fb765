package search

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tickmesh/grid"
	"github.com/hupe1980/tickmesh/queue"
)

// fakeOccupancy blocks every tile for which blocked returns true and
// records each query.
type fakeOccupancy struct {
	blocked func(p Point) bool
	boxes   []Box
	err     error
}

func (f *fakeOccupancy) Blocked(_ string, box Box) ([]Point, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.boxes = append(f.boxes, box)
	var out []Point
	for x := box.Min.X; x <= box.Max.X; x++ {
		for y := box.Min.Y; y <= box.Max.Y; y++ {
			if p := Pt(x, y); f.blocked != nil && f.blocked(p) {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func allFree() *fakeOccupancy { return &fakeOccupancy{} }

func allBlocked() *fakeOccupancy {
	return &fakeOccupancy{blocked: func(Point) bool { return true }}
}

func seededWalls(seed uint64) *fakeOccupancy {
	walls := map[Point]bool{}
	rng := rand.New(rand.NewPCG(seed, seed))
	for i := 0; i < 900; i++ {
		walls[Pt(rng.IntN(RegionSize), rng.IntN(RegionSize))] = true
	}
	return &fakeOccupancy{blocked: func(p Point) bool { return walls[p] }}
}

func TestMatrix_FreeCellYieldsCentreAndArms(t *testing.T) {
	occ := allFree()
	m := NewMatrix(Pt(25, 25), DefaultConfig())

	p, err := m.FindNextPos("W1N1", occ)

	require.NoError(t, err)
	assert.Equal(t, Pt(25, 25), p)
	assert.Equal(t, []Point{Pt(25, 25), Pt(26, 25), Pt(24, 25), Pt(25, 26), Pt(25, 24)}, m.Open())
	assert.Equal(t, []Box{{Min: Pt(24, 24), Max: Pt(26, 26)}}, occ.boxes)
}

func TestMatrix_RepeatedCallsDoNoWork(t *testing.T) {
	occ := allFree()
	m := NewMatrix(Pt(25, 25), DefaultConfig())

	first, err := m.FindNextPos("W1N1", occ)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		p, err := m.FindNextPos("W1N1", occ)
		require.NoError(t, err)
		assert.Equal(t, first, p)
	}

	assert.Len(t, occ.boxes, 1)
	assert.Equal(t, 1, m.Explored())
}

func TestMatrix_PopOpenPos(t *testing.T) {
	occ := allFree()
	m := NewMatrix(Pt(25, 25), DefaultConfig())
	_, err := m.FindNextPos("W1N1", occ)
	require.NoError(t, err)

	p, ok := m.PopOpenPos()
	require.True(t, ok)
	assert.Equal(t, Pt(25, 25), p)

	next, err := m.FindNextPos("W1N1", occ)
	require.NoError(t, err)
	assert.Equal(t, Pt(26, 25), next)
	assert.Len(t, occ.boxes, 1, "confirmed tiles are served without a new step")

	empty := NewEmptyMatrix(Config{})
	_, ok = empty.PopOpenPos()
	assert.False(t, ok)
}

func TestMatrix_BlockedCellQueuesNeighbours(t *testing.T) {
	m := NewMatrix(Pt(25, 25), DefaultConfig())

	_, err := m.FindNextPos("W1N1", allBlocked())

	assert.ErrorIs(t, err, ErrNoCandidate)
	assert.True(t, m.IsExplored(Pt(8, 8)))
	assert.Equal(t, []Point{Pt(9, 8), Pt(7, 8), Pt(8, 9), Pt(8, 7)}, m.Todo())
	assert.Empty(t, m.Open())
}

func TestMatrix_ThresholdCountsDiagonals(t *testing.T) {
	tests := []struct {
		name    string
		blocked []Point
		want    error
	}{
		{"all diagonals free", nil, nil},
		{"three diagonals free", []Point{Pt(24, 24)}, ErrNoCandidate},
		{"two diagonals free", []Point{Pt(24, 24), Pt(26, 26)}, ErrNoCandidate},
		{"arms blocked only", []Point{Pt(25, 24), Pt(24, 25), Pt(26, 25), Pt(25, 26)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := map[Point]bool{}
			for _, p := range tt.blocked {
				set[p] = true
			}
			occ := &fakeOccupancy{blocked: func(p Point) bool { return set[p] }}
			m := NewMatrix(Pt(25, 25), DefaultConfig())

			_, err := m.FindNextPos("W1N1", occ)

			if tt.want == nil {
				assert.NoError(t, err)
				for _, p := range m.Open() {
					assert.False(t, set[p], "blocked tile %v offered", p)
				}
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestMatrix_EdgeCellIsNotBuildable(t *testing.T) {
	m := NewMatrix(Pt(0, 0), DefaultConfig())

	_, err := m.FindNextPos("W1N1", allFree())

	assert.ErrorIs(t, err, ErrNoCandidate)
	assert.ElementsMatch(t, []Point{Pt(1, 0), Pt(0, 1)}, m.Todo())
}

func TestMatrix_OutOfSpace(t *testing.T) {
	m := NewEmptyMatrix(Config{})

	_, err := m.FindNextPos("W7N3", allFree())

	assert.ErrorIs(t, err, ErrOutOfSpace)
	var oos *OutOfSpaceError
	require.True(t, errors.As(err, &oos))
	assert.Equal(t, "W7N3", oos.Region)
}

func TestMatrix_StartOutsideRegion(t *testing.T) {
	for _, start := range []Point{Pt(-10, 80), Pt(-1, -1), Pt(-2, 25), Pt(25, -1)} {
		t.Run(start.String(), func(t *testing.T) {
			occ := allFree()
			m := NewMatrix(start, DefaultConfig())

			_, err := m.FindNextPos("W1N1", occ)

			assert.ErrorIs(t, err, ErrOutOfSpace)
			assert.Empty(t, occ.boxes)
			assert.Equal(t, 0, m.Explored())
		})
	}
}

func TestMatrix_CustomThreshold(t *testing.T) {
	occ := &fakeOccupancy{blocked: func(p Point) bool { return p == Pt(24, 24) }}
	m := NewMatrix(Pt(25, 25), Config{FreeThreshold: 2})

	p, err := m.FindNextPos("W1N1", occ)

	require.NoError(t, err)
	assert.Equal(t, Pt(25, 25), p)
}

func TestMatrix_OracleErrorLeavesStateUntouched(t *testing.T) {
	occ := &fakeOccupancy{err: errors.New("room not visible")}
	m := NewMatrix(Pt(25, 25), DefaultConfig())
	before, err := json.Marshal(m)
	require.NoError(t, err)

	_, err = m.FindNextPos("W1N1", occ)

	assert.ErrorIs(t, err, occ.err)
	after, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestMatrix_ExpandsEveryCellOnce(t *testing.T) {
	occ := allBlocked()
	m := NewMatrix(Pt(25, 25), DefaultConfig())

	steps := 0
	for {
		_, err := m.FindNextPos("W1N1", occ)
		if errors.Is(err, ErrOutOfSpace) {
			break
		}
		require.ErrorIs(t, err, ErrNoCandidate)
		steps++
		require.LessOrEqual(t, steps, CoarseSize*CoarseSize, "cell expanded twice")
	}

	assert.Equal(t, CoarseSize*CoarseSize, steps)
	assert.Equal(t, CoarseSize*CoarseSize, m.Explored())

	seen := map[Box]bool{}
	for _, b := range occ.boxes {
		require.False(t, seen[b], "box %v queried twice", b)
		seen[b] = true
	}
}

func TestMatrix_FindNextPosWithin(t *testing.T) {
	// only the cell around (34, 25) is free
	occ := &fakeOccupancy{blocked: func(p Point) bool {
		return p.X < 33 || p.X > 35 || p.Y < 24 || p.Y > 26
	}}
	m := NewMatrix(Pt(25, 25), DefaultConfig())

	_, err := m.FindNextPosWithin("W1N1", occ, 2)
	assert.ErrorIs(t, err, ErrNoCandidate)

	p, err := m.FindNextPosWithin("W1N1", occ, 50)
	require.NoError(t, err)
	assert.Equal(t, Pt(34, 25), p)
}

func TestMatrix_Reset(t *testing.T) {
	m := NewMatrix(Pt(25, 25), DefaultConfig())
	for {
		if _, err := m.FindNextPos("W1N1", allBlocked()); errors.Is(err, ErrOutOfSpace) {
			break
		}
	}

	m.Reset(Pt(25, 25))

	assert.Equal(t, 0, m.Explored())
	assert.Equal(t, []Point{Pt(8, 8)}, m.Todo())
	p, err := m.FindNextPos("W1N1", allFree())
	require.NoError(t, err)
	assert.Equal(t, Pt(25, 25), p)
}

func TestMatrix_ResetDoesNotDuplicateQueuedStart(t *testing.T) {
	m := NewMatrix(Pt(25, 25), DefaultConfig())

	m.Reset(Pt(24, 24))

	assert.Equal(t, []Point{Pt(8, 8)}, m.Todo())
}

func TestMatrix_RoundTripIsDeterministic(t *testing.T) {
	occ := seededWalls(7)
	original := NewMatrix(Pt(25, 25), DefaultConfig())

	// advance a few steps, consuming some tiles
	for i := 0; i < 12; i++ {
		if _, err := original.FindNextPos("W1N1", occ); err == nil && i%3 == 0 {
			original.PopOpenPos()
		}
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	restored := NewEmptyMatrix(DefaultConfig())
	require.NoError(t, json.Unmarshal(data, restored))

	for i := 0; i < 200; i++ {
		want, wantErr := original.FindNextPos("W1N1", occ)
		got, gotErr := restored.FindNextPos("W1N1", occ)

		require.Equal(t, wantErr, gotErr, "step %d", i)
		require.Equal(t, want, got, "step %d", i)
		if errors.Is(wantErr, ErrOutOfSpace) {
			break
		}
		if wantErr == nil {
			original.PopOpenPos()
			restored.PopOpenPos()
		}
	}
	assert.Equal(t, original.Explored(), restored.Explored())
}

func TestMatrix_JSONShape(t *testing.T) {
	m := NewMatrix(Pt(25, 25), DefaultConfig())
	_, err := m.FindNextPos("W1N1", allFree())
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `[[9,8],[7,8],[8,9],[8,7]]`, string(raw["todo"]))
	assert.JSONEq(t, `[[25,25],[26,25],[24,25],[25,26],[25,24]]`, string(raw["open"]))

	var done string
	require.NoError(t, json.Unmarshal(raw["done"], &done))
	g := grid.NewBitGrid(CoarseSize, CoarseSize)
	require.NoError(t, g.Decompress(done))
	assert.True(t, g.Get(8, 8))
	assert.Equal(t, 1, g.Count())
}

func TestMatrix_UnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"todo too large", `{"todo":[[1,1],[2,2],[3,3]],"done":"0_37","open":[]}`, queue.ErrTooLarge},
		{"bad grid", `{"todo":[],"done":"0_36","open":[]}`, grid.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatrix(Pt(25, 25), Config{TodoCapacity: 2})

			err := json.Unmarshal([]byte(tt.data), m)

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, []Point{Pt(8, 8)}, m.Todo(), "matrix must be unchanged")
		})
	}
}

func TestPoint_JSON(t *testing.T) {
	data, err := json.Marshal(Pt(3, 47))
	require.NoError(t, err)
	assert.Equal(t, `[3,47]`, string(data))

	var p Point
	require.NoError(t, json.Unmarshal([]byte(`[12,5]`), &p))
	assert.Equal(t, Pt(12, 5), p)

	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &p))
}

func TestPoint_Geometry(t *testing.T) {
	assert.Equal(t, 17, CoarseSize)
	assert.Equal(t, Pt(8, 8), Pt(25, 24).Coarse())
	assert.Equal(t, Pt(-1, -1), Pt(-1, -1).Coarse())
	assert.Equal(t, Pt(-1, 0), Pt(-3, 2).Coarse())
	assert.Equal(t, Pt(-2, 16), Pt(-4, 50).Coarse())
	assert.Equal(t, Pt(25, 25), Pt(8, 8).Centre())
	assert.True(t, Pt(1, 48).Buildable())
	assert.False(t, Pt(0, 10).Buildable())
	assert.False(t, Pt(10, 49).Buildable())
	assert.True(t, Box{Min: Pt(1, 1), Max: Pt(3, 3)}.Contains(Pt(3, 1)))
	assert.False(t, Box{Min: Pt(1, 1), Max: Pt(3, 3)}.Contains(Pt(4, 1)))
}

package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_TypedAccessors(t *testing.T) {
	m := NewMemory()

	require.NoError(t, m.Set("creep1", "target", 7))
	require.NoError(t, m.Set("creep1", "role", "worker"))
	require.NoError(t, m.Set("creep1", "idle", true))

	n, ok := m.Int("creep1", "target")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	s, ok := m.String("creep1", "role")
	assert.True(t, ok)
	assert.Equal(t, "worker", s)

	b, ok := m.Bool("creep1", "idle")
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = m.Int("creep1", "role")
	assert.False(t, ok, "mismatched type")

	_, ok = m.String("creep2", "role")
	assert.False(t, ok, "missing entity")
}

func TestMemory_RemoveDropsEmptyEntity(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("a", "k", 1))

	m.Remove("a", "k")
	m.Remove("missing", "k")

	assert.Empty(t, m.Entities())
}

func TestMemory_LastBranch(t *testing.T) {
	m := NewMemory()

	_, ok := m.LastBranch("creep1")
	assert.False(t, ok)

	m.SetLastBranch("creep1", "build")
	branch, ok := m.LastBranch("creep1")
	assert.True(t, ok)
	assert.Equal(t, "build", branch)
}

func TestMemory_Prune(t *testing.T) {
	m := NewMemory()
	for _, e := range []string{"a", "b", "c"} {
		m.SetLastBranch(e, "x")
	}

	removed := m.Prune(func(e string) bool { return e != "b" })

	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"a", "c"}, m.Entities())
}

func TestMemory_JSONRoundTrip(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("a", "n", 3))
	m.SetLastBranch("b", "repair")

	data, err := json.Marshal(m)
	require.NoError(t, err)

	restored := NewMemory()
	require.NoError(t, json.Unmarshal(data, restored))

	n, ok := restored.Int("a", "n")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	branch, _ := restored.LastBranch("b")
	assert.Equal(t, "repair", branch)
}

func TestMemory_UnmarshalErrorKeepsContents(t *testing.T) {
	m := NewMemory()
	m.SetLastBranch("a", "x")

	assert.Error(t, json.Unmarshal([]byte(`{"a":`), m))

	branch, ok := m.LastBranch("a")
	assert.True(t, ok)
	assert.Equal(t, "x", branch)
}

func TestMemory_UnmarshalNullStaysWritable(t *testing.T) {
	m := NewMemory()
	m.SetLastBranch("a", "x")

	require.NoError(t, json.Unmarshal([]byte(`null`), m))
	assert.Empty(t, m.Entities())

	require.NoError(t, m.Set("W1N1", "k", 1))
	m.SetLastBranch("b", "y")

	v, ok := m.Int("W1N1", "k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

const lastBranchKey = "last_branch"

// Memory is persisted per-entity scratch state: entity -> key -> JSON value.
// It survives across ticks through the runner, which loads it before and
// commits it after every tick. It is safe for concurrent access.
//
// Contract:
//   - Values are stored JSON encoded so a committed Memory restores exactly
//   - Typed getters report false for missing keys and mismatched types
//   - Removing the last key of an entity drops the entity
type Memory struct {
	entities map[string]map[string]json.RawMessage
	mu       sync.RWMutex
}

// NewMemory creates an empty Memory.
func NewMemory() *Memory {
	return &Memory{entities: map[string]map[string]json.RawMessage{}}
}

// Set stores v under entity/key.
func (m *Memory) Set(entity, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("memory %s/%s: %w", entity, key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entities[entity]
	if !ok {
		e = map[string]json.RawMessage{}
		m.entities[entity] = e
	}
	e[key] = raw

	return nil
}

// Get decodes the value under entity/key into v. It reports false when the
// key is missing or does not decode into v.
func (m *Memory) Get(entity, key string, v any) bool {
	m.mu.RLock()
	raw, ok := m.entities[entity][key]
	m.mu.RUnlock()

	if !ok {
		return false
	}

	return json.Unmarshal(raw, v) == nil
}

// Int returns the integer stored under entity/key.
func (m *Memory) Int(entity, key string) (int, bool) {
	var v int
	ok := m.Get(entity, key, &v)
	return v, ok
}

// String returns the string stored under entity/key.
func (m *Memory) String(entity, key string) (string, bool) {
	var v string
	ok := m.Get(entity, key, &v)
	return v, ok
}

// Bool returns the boolean stored under entity/key.
func (m *Memory) Bool(entity, key string) (bool, bool) {
	var v bool
	ok := m.Get(entity, key, &v)
	return v, ok
}

// Remove deletes entity/key.
func (m *Memory) Remove(entity, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entities[entity]
	if !ok {
		return
	}
	delete(e, key)
	if len(e) == 0 {
		delete(m.entities, entity)
	}
}

// LastBranch returns the name of the branch the entity last executed successfully.
func (m *Memory) LastBranch(entity string) (string, bool) {
	return m.String(entity, lastBranchKey)
}

// SetLastBranch records the entity's last successful branch.
func (m *Memory) SetLastBranch(entity, branch string) {
	// a string always marshals
	_ = m.Set(entity, lastBranchKey, branch)
}

// Entities returns the sorted entity names.
func (m *Memory) Entities() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.entities))
	for e := range m.entities {
		out = append(out, e)
	}
	sort.Strings(out)

	return out
}

// Prune drops every entity for which alive returns false and returns how
// many were removed.
func (m *Memory) Prune(alive func(entity string) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for e := range m.entities {
		if !alive(e) {
			delete(m.entities, e)
			removed++
		}
	}

	return removed
}

// MarshalJSON encodes the memory as a nested JSON object.
func (m *Memory) MarshalJSON() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return json.Marshal(m.entities)
}

// UnmarshalJSON replaces the memory contents. On error the memory is unchanged.
func (m *Memory) UnmarshalJSON(data []byte) error {
	entities := map[string]map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &entities); err != nil {
		return err
	}
	if entities == nil {
		entities = map[string]map[string]json.RawMessage{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for e, kv := range entities {
		if len(kv) == 0 {
			delete(entities, e)
		}
	}
	m.entities = entities

	return nil
}

package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Record is a top-level persisted collection mapping a key (region, entity)
// to that key's component state. Entries are decoded independently so one
// corrupt entry never takes the others down with it.
type Record[S any] struct {
	entries  map[string]S
	newEntry func() S
	dropped  []string
	errs     error
}

// NewRecord returns an empty Record. newEntry builds a fresh entry both for
// Entry and as the decode target of every stored entry; it may be nil when
// the zero value of S is usable.
func NewRecord[S any](newEntry func() S) *Record[S] {
	return &Record[S]{entries: map[string]S{}, newEntry: newEntry}
}

func (r *Record[S]) fresh() S {
	if r.newEntry == nil {
		var zero S
		return zero
	}
	return r.newEntry()
}

// Entry returns the state stored under key, creating it when missing.
func (r *Record[S]) Entry(key string) S {
	if s, ok := r.entries[key]; ok {
		return s
	}
	s := r.fresh()
	r.Set(key, s)
	return s
}

// Get returns the state stored under key.
func (r *Record[S]) Get(key string) (S, bool) {
	s, ok := r.entries[key]
	return s, ok
}

// Set replaces the state stored under key.
func (r *Record[S]) Set(key string, s S) {
	if r.entries == nil {
		r.entries = map[string]S{}
	}
	r.entries[key] = s
}

// Delete removes key.
func (r *Record[S]) Delete(key string) { delete(r.entries, key) }

// Len returns the number of entries.
func (r *Record[S]) Len() int { return len(r.entries) }

// Keys returns the entry keys in sorted order.
func (r *Record[S]) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dropped returns the keys discarded by the last decode and the joined
// decode errors.
func (r *Record[S]) Dropped() ([]string, error) { return r.dropped, r.errs }

// MarshalJSON encodes the record as a JSON object.
func (r *Record[S]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.entries)
}

// UnmarshalJSON replaces the record's entries. A malformed top-level object
// is an error and leaves the record unchanged; a malformed entry is dropped
// and reported through Dropped.
func (r *Record[S]) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	entries := make(map[string]S, len(raw))
	var dropped []string
	var errs []error

	for key, msg := range raw {
		s := r.fresh()
		if err := json.Unmarshal(msg, &s); err != nil {
			dropped = append(dropped, key)
			errs = append(errs, fmt.Errorf("entry %s: %w", key, err))
			continue
		}
		entries[key] = s
	}

	sort.Strings(dropped)
	r.entries = entries
	r.dropped = dropped
	r.errs = errors.Join(errs...)

	return nil
}

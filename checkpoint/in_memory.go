package checkpoint

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/tickmesh/core"
)

// DefaultMaxSize is the default per-key cap, the size of one host memory segment.
const DefaultMaxSize = 100 * 1024

// Store is the persistence oracle consumed by the runner and TickContext.
type Store = core.CheckpointStore

// Options configures a MemoryStore.
type Options struct {
	// MaxSize is the per-key cap in bytes. Zero or negative disables the cap.
	MaxSize int
}

// MemoryStore is a trivial in-process Store implementation useful for tests,
// examples and single-process simulations. It keeps all values in a map
// guarded by an RWMutex.
//
// Layout: key -> serialized value
type MemoryStore struct {
	mu      sync.RWMutex
	values  map[string]string
	maxSize int
}

// NewMemoryStore returns an empty in-memory store capped at DefaultMaxSize
// bytes per key unless overridden.
func NewMemoryStore(optFns ...func(o *Options)) *MemoryStore {
	opts := Options{MaxSize: DefaultMaxSize}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &MemoryStore{values: make(map[string]string), maxSize: opts.MaxSize}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key, or returns ErrTooLarge without writing.
func (s *MemoryStore) Set(key, value string) error {
	if err := CheckSize(key, value, s.maxSize); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete removes key if present.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *MemoryStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// CheckSize returns ErrTooLarge when value exceeds maxSize. It is shared by
// every Store implementation; a non-positive maxSize disables the cap.
func CheckSize(key, value string, maxSize int) error {
	if maxSize > 0 && len(value) > maxSize {
		return fmt.Errorf("%w: key %s is %d bytes, cap is %d", ErrTooLarge, key, len(value), maxSize)
	}
	return nil
}


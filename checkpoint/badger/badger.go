// Package badger provides a checkpoint.Store backed by BadgerDB.
//
// BadgerDB gives the simulator and CLI durable, embedded checkpoint storage
// that survives process restarts. In-memory mode is used by tests.
package badger

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/hupe1980/tickmesh/checkpoint"
	"github.com/hupe1980/tickmesh/logging"
)

// Config holds configuration for a Badger-backed store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// MaxSize is the per-key cap in bytes. Zero disables the cap.
	MaxSize int

	// Prefix namespaces every key, so several shards can share one database.
	Prefix string

	// Logger receives BadgerDB's internal log lines. If nil they are discarded.
	Logger logging.Logger
}

// DefaultConfig returns production defaults for a database at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
		MaxSize:    checkpoint.DefaultMaxSize,
	}
}

// InMemoryConfig returns configuration optimized for testing.
func InMemoryConfig() Config {
	return Config{
		InMemory: true,
		MaxSize:  checkpoint.DefaultMaxSize,
	}
}

// badgerLogger adapts logging.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger logging.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a checkpoint.Store backed by a BadgerDB instance.
// It is safe for concurrent use.
type Store struct {
	db      *badger.DB
	prefix  string
	maxSize int
	owned   bool
}

var _ checkpoint.Store = (*Store)(nil)

// Open opens a BadgerDB at the configured path, or in memory, and wraps it
// in a Store. The caller must Close the store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &Store{db: db, prefix: cfg.Prefix, maxSize: cfg.MaxSize, owned: true}, nil
}

// New wraps an already open database. Close on the returned store does not
// close db.
func New(db *badger.DB, prefix string, maxSize int) *Store {
	return &Store{db: db, prefix: prefix, maxSize: maxSize}
}

// Sub returns a store over the same database whose keys are further
// namespaced by prefix. Closing it does not close the database.
func (s *Store) Sub(prefix string) *Store {
	return &Store{db: s.db, prefix: s.prefix + prefix, maxSize: s.maxSize}
}

func (s *Store) key(k string) []byte { return []byte(s.prefix + k) }

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return string(value), true, nil
}

// Set stores value under key, or returns checkpoint.ErrTooLarge without writing.
func (s *Store) Set(key, value string) error {
	if err := checkpoint.CheckSize(key, value, s.maxSize); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key if present.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key(key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys returns the stored keys under the store's prefix in sorted order,
// with the prefix stripped.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(s.prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(s.prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close closes the underlying database when the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

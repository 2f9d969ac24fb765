// Package logging provides a minimal logging interface and adapters for tickmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the runner and nodes use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - TickLogger with tick/entity scoped attributes
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	r := runner.New(root, store, runner.WithLogger(logger))
package logging

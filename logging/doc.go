// Package logging provides a minimal logging interface and adapters for teamflow.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the graph, runner and agents use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - TeamLogger with run / component scoping and per-run level overrides
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	r := runner.New(g, func(o *runner.Options) { o.Logger = logger })
package logging

// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer TeamLogger with contextual
// helpers (run, component, level) used by the graph, runner and server.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a case-insensitive level name into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger defines the minimal logging interface used across teamflow.
// Arguments after msg are alternating key/value pairs, as with slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LevelLogger is implemented by loggers that can produce a copy at a
// different level. The runner uses it to scope debug logging to a single run.
type LevelLogger interface {
	Logger
	WithLevel(level LogLevel) Logger
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// TeamLogger wraps slog handlers adding contextual cloning helpers. Copies made
// through the With* methods share the underlying writer.
type TeamLogger struct {
	cfg       LoggerConfig
	logger    *slog.Logger
	component string
	runID     string
	attrs     []any
}

// LoggerConfig configures construction of a TeamLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stderr}
}

// NewLogger builds a TeamLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *TeamLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	c := *cfg
	if c.Output == nil {
		c.Output = os.Stderr
	}
	return &TeamLogger{cfg: c, logger: slog.New(newHandler(c)), component: c.Component}
}

func newHandler(cfg LoggerConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	if cfg.Format == "text" {
		return slog.NewTextHandler(cfg.Output, opts)
	}
	return slog.NewJSONHandler(cfg.Output, opts)
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *TeamLogger) clone() *TeamLogger {
	nl := *l
	nl.attrs = append([]any(nil), l.attrs...)
	return &nl
}

// Level returns the configured minimum level.
func (l *TeamLogger) Level() LogLevel { return l.cfg.Level }

// WithContext adds a key/value attribute that will be attached to every log entry.
func (l *TeamLogger) WithContext(key string, value any) *TeamLogger {
	nl := l.clone()
	nl.attrs = append(nl.attrs, key, value)
	return nl
}

// WithComponent sets the logical component (graph, runner, server, etc.).
func (l *TeamLogger) WithComponent(c string) *TeamLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithRun attaches the run (workflow) identifier.
func (l *TeamLogger) WithRun(runID string) *TeamLogger {
	nl := l.clone()
	nl.runID = runID
	return nl
}

// WithLevel returns a copy emitting at the given minimum level.
func (l *TeamLogger) WithLevel(level LogLevel) Logger {
	nl := l.clone()
	nl.cfg.Level = level
	nl.logger = slog.New(newHandler(nl.cfg))
	return nl
}

func (l *TeamLogger) log(level slog.Level, msg string, args ...any) {
	if !l.logger.Enabled(context.Background(), level) {
		return
	}
	all := make([]any, 0, len(l.attrs)+len(args)+4)
	if l.component != "" {
		all = append(all, "component", l.component)
	}
	if l.runID != "" {
		all = append(all, "run_id", l.runID)
	}
	all = append(all, l.attrs...)
	all = append(all, args...)
	l.logger.Log(context.Background(), level, msg, all...)
}

// Debug logs at debug level.
func (l *TeamLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }

// Info logs at info level.
func (l *TeamLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args...) }

// Warn logs at warn level.
func (l *TeamLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args...) }

// Error logs at error level.
func (l *TeamLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// NewSlogLogger creates a new TeamLogger with the specified level and format.
func NewSlogLogger(level LogLevel, format string, addSource bool) *TeamLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

// ForLevel returns logger at the given level when it supports it, otherwise logger unchanged.
func ForLevel(logger Logger, level LogLevel) Logger {
	if ll, ok := logger.(LevelLogger); ok {
		return ll.WithLevel(level)
	}
	return logger
}

// ForRun returns logger tagged with the run identifier when it supports
// contextual attributes, otherwise logger unchanged.
func ForRun(logger Logger, runID string) Logger {
	switch l := logger.(type) {
	case *TeamLogger:
		return l.WithRun(runID)
	case *SlogAdapter:
		return NewSlogAdapter(l.Logger.With("run_id", runID))
	default:
		return logger
	}
}

// Package logging is the structured logging facade used by every
// component of the target.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Component identifies a subsystem for log filtering.
type Component string

// Target component identifiers.
const (
	ComponentAllocator Component = "allocator"
	ComponentIndex     Component = "index"
	ComponentSlots     Component = "slots"
	ComponentIdentity  Component = "identity"
	ComponentTarget    Component = "target"
	ComponentWorkload  Component = "workload"
	ComponentCLI       Component = "cli"
)

// Format specifies the output format for logging.
type Format int

// Log format options.
const (
	FormatText Format = iota
	FormatJSON
)

var (
	defaultLogger *slog.Logger
	level         = new(slog.LevelVar)
	mu            sync.RWMutex
)

func init() {
	level.Set(slog.LevelWarn)
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// SetLevel sets the minimum log level.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Level returns the current minimum log level.
func Level() slog.Level {
	return level.Level()
}

// SetLogger replaces the default logger.
func SetLogger(logger *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// Configure points the default logger at w using the given format.
func Configure(w io.Writer, format Format) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	SetLogger(slog.New(h))
}

// ParseLevel converts "debug", "info", "warn" or "error" into a level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}

// ParseFormat converts "text" or "json" into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("invalid log format %q (valid: text, json)", s)
}

// Logger returns the default logger tagged with the component.
func Logger(c Component) *slog.Logger {
	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()
	return logger.With("component", string(c))
}

// Debug logs a debug message with the given component.
func Debug(c Component, msg string, args ...any) {
	Logger(c).Debug(msg, args...)
}

// Info logs an info message with the given component.
func Info(c Component, msg string, args ...any) {
	Logger(c).Info(msg, args...)
}

// Warn logs a warning message with the given component.
func Warn(c Component, msg string, args ...any) {
	Logger(c).Warn(msg, args...)
}

// Error logs an error message with the given component.
func Error(c Component, msg string, args ...any) {
	Logger(c).Error(msg, args...)
}

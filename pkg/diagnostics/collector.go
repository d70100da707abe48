// Package diagnostics records internal, non-lint problems found while running
// the linter, such as invalid rule options or unknown rule ids in configuration.
//
// Diagnostics are distinct from lint issues: they describe the tool's own
// inputs, not the user's project files. Components report through a Collector
// instead of failing the run.
package diagnostics

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Level is the importance of a diagnostic.
type Level int

// Diagnostic levels, ordered by importance.
const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Diagnostic is one structured internal log entry.
type Diagnostic struct {
	Message string         `json:"message"`
	Source  string         `json:"source"`
	Level   Level          `json:"level"`
	Code    string         `json:"code,omitempty"`
	Context map[string]any `json:"context,omitempty"`
	Time    time.Time      `json:"time"`
}

// Collector is an append-only list of diagnostics. It is safe for concurrent use.
// A Collector lives for one run; long-lived embedders call Clear between runs.
type Collector struct {
	mu      sync.Mutex
	entries []Diagnostic
	logger  *slog.Logger
	now     func() time.Time
}

// NewCollector creates a collector. If logger is non-nil every entry is also
// logged at the matching level.
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{
		logger: logger,
		now:    time.Now,
	}
}

// Add appends a diagnostic. A zero Time is filled in.
func (c *Collector) Add(d Diagnostic) {
	if d.Time.IsZero() {
		d.Time = c.now()
	}

	c.mu.Lock()
	c.entries = append(c.entries, d)
	c.mu.Unlock()

	if c.logger != nil {
		attrs := []slog.Attr{slog.String("source", d.Source)}
		if d.Code != "" {
			attrs = append(attrs, slog.String("code", d.Code))
		}
		for k, v := range d.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
		c.logger.LogAttrs(context.Background(), d.Level.slogLevel(), d.Message, attrs...)
	}
}

// Info records an informational diagnostic.
func (c *Collector) Info(source, code, message string, ctx map[string]any) {
	c.Add(Diagnostic{Message: message, Source: source, Level: LevelInfo, Code: code, Context: ctx})
}

// Warn records a warning diagnostic.
func (c *Collector) Warn(source, code, message string, ctx map[string]any) {
	c.Add(Diagnostic{Message: message, Source: source, Level: LevelWarning, Code: code, Context: ctx})
}

// Error records an error diagnostic.
func (c *Collector) Error(source, code, message string, ctx map[string]any) {
	c.Add(Diagnostic{Message: message, Source: source, Level: LevelError, Code: code, Context: ctx})
}

// All returns a copy of every diagnostic in insertion order.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.entries))
	copy(out, c.entries)
	return out
}

// Filter returns the diagnostics at or above minLevel, in insertion order.
func (c *Collector) Filter(minLevel Level) []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Diagnostic
	for _, d := range c.entries {
		if d.Level >= minLevel {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any error-level diagnostic was recorded.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.entries {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops all recorded diagnostics.
func (c *Collector) Clear() {
	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
}

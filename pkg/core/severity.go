package core

import (
	"fmt"
	"strings"
)

// =============================================================================
// Severity
// =============================================================================

// Severity controls whether a rule's findings are reported and how they count
// towards the exit code. The zero value is SeverityOff.
type Severity int

// Severity levels, ordered so that a larger value is more severe.
const (
	// SeverityOff disables a rule.
	SeverityOff Severity = iota
	// SeverityWarn reports findings as warnings.
	SeverityWarn
	// SeverityError reports findings as errors.
	SeverityError
)

// String returns the configuration spelling of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Label returns the word used when printing an issue.
func (s Severity) Label() string {
	if s == SeverityWarn {
		return "warning"
	}
	return s.String()
}

// ParseSeverity converts a configuration value to a Severity.
// Accepts off, warn, warning, error (any case) and the numeric forms 0, 1, 2.
// Returns SeverityOff and false for anything else.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "0":
		return SeverityOff, true
	case "warn", "warning", "1":
		return SeverityWarn, true
	case "error", "2":
		return SeverityError, true
	default:
		return SeverityOff, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, ok := ParseSeverity(string(text))
	if !ok {
		return fmt.Errorf("invalid severity %q (expected off, warn or error)", string(text))
	}
	*s = parsed
	return nil
}

// =============================================================================
// RuleInfo
// =============================================================================

// RuleInfo provides metadata about a lint rule for documentation/tooling.
// This is a DTO (Data Transfer Object) - it carries data without behavior.
type RuleInfo struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        Category `json:"category"`
	Description     string   `json:"description"`
	DefaultSeverity Severity `json:"default_severity"`
	Fixable         bool     `json:"fixable"`
	Deprecated      bool     `json:"deprecated"`
	ReplacedBy      []string `json:"replaced_by,omitempty"`
	ConfigKeys      []string `json:"config_keys,omitempty"`
	Source          string   `json:"source"` // "builtin" or the path of a custom rule file

	// Documentation fields
	Rationale   string `json:"rationale,omitempty"`
	BadExample  string `json:"bad_example,omitempty"`
	GoodExample string `json:"good_example,omitempty"`
	Fix         string `json:"fix,omitempty"`
}

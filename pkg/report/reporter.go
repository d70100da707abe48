// Package report aggregates validation results, renders them and derives the
// process exit code.
//
// Rendering and exit codes are independent: the chosen Format changes what is
// written, never the value returned by ExitCode.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/leapstack-labs/claudelint/pkg/core"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	// ExitFatal is reserved for configuration and tooling failures. Rule
	// findings never produce it.
	ExitFatal = 2
)

// Policy controls how warnings affect the exit code.
type Policy struct {
	// MaxWarnings is the number of warnings at which a warning-only run
	// fails. Negative means unset.
	MaxWarnings int
	// WarningsAsErrors is informational. Without a threshold any warning
	// already fails the run, and with one the threshold decides, so
	// ExitCode never reads it.
	WarningsAsErrors bool
}

// DefaultPolicy returns a policy with no warning threshold.
func DefaultPolicy() Policy {
	return Policy{MaxWarnings: -1}
}

// ExitCode derives the exit code from issue counts.
//
// Errors always fail. A run without findings passes. With MaxWarnings set, a
// warning-only run fails once the count reaches the threshold and
// WarningsAsErrors is not consulted. Otherwise any warning fails the run.
func ExitCode(errors, warnings int, p Policy) int {
	switch {
	case errors > 0:
		return ExitFailure
	case warnings == 0:
		return ExitOK
	case p.MaxWarnings >= 0:
		if warnings >= p.MaxWarnings {
			return ExitFailure
		}
		return ExitOK
	default:
		return ExitFailure
	}
}

// Format selects a renderer.
type Format string

const (
	FormatStylish Format = "stylish"
	FormatCompact Format = "compact"
	FormatJSON    Format = "json"
	FormatGitHub  Format = "github"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatStylish, FormatCompact, FormatJSON, FormatGitHub}
}

// ParseFormat parses a format name. The empty string means stylish.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatStylish, nil
	}
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (expected stylish, compact, json or github)", s)
}

// Reporter accumulates validation results for one run.
type Reporter struct {
	results []core.ValidationResult
	policy  Policy
	verbose bool
	profile termenv.Profile
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithPolicy sets the exit-code policy.
func WithPolicy(p Policy) Option {
	return func(r *Reporter) { r.policy = p }
}

// WithVerbose includes fixes and explanations in text formats.
func WithVerbose(v bool) Option {
	return func(r *Reporter) { r.verbose = v }
}

// WithColorProfile sets the colour profile of the stylish format.
// The default is termenv.Ascii, which emits no escape sequences.
func WithColorProfile(p termenv.Profile) Option {
	return func(r *Reporter) { r.profile = p }
}

// New creates an empty Reporter.
func New(opts ...Option) *Reporter {
	r := &Reporter{
		policy:  DefaultPolicy(),
		profile: termenv.Ascii,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add appends a validator result.
func (r *Reporter) Add(results ...core.ValidationResult) {
	r.results = append(r.results, results...)
}

// Results returns the accumulated results in insertion order.
func (r *Reporter) Results() []core.ValidationResult {
	out := make([]core.ValidationResult, len(r.results))
	copy(out, r.results)
	return out
}

// Summary returns the total error and warning counts.
func (r *Reporter) Summary() (errors, warnings int) {
	for _, res := range r.results {
		errors += len(res.Errors)
		warnings += len(res.Warnings)
	}
	return errors, warnings
}

// Valid reports whether no result has errors.
func (r *Reporter) Valid() bool {
	errors, _ := r.Summary()
	return errors == 0
}

// ExitCode applies the reporter's policy to the accumulated counts.
func (r *Reporter) ExitCode() int {
	errors, warnings := r.Summary()
	return ExitCode(errors, warnings, r.policy)
}

// Render writes the accumulated results in the given format.
func (r *Reporter) Render(w io.Writer, format Format) error {
	switch format {
	case FormatStylish, "":
		return r.renderStylish(w)
	case FormatCompact:
		return r.renderCompact(w)
	case FormatJSON:
		return r.renderJSON(w)
	case FormatGitHub:
		return r.renderGitHub(w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

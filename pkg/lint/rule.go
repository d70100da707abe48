package lint

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/leapstack-labs/claudelint/pkg/core"
)

// CheckFunc is the executable body of a rule. It inspects the file held by rc
// and calls rc.Report for every finding. A returned error is reported as a
// single error issue naming the rule; other rules still run.
//
// Checks may block (for example to stat a referenced file). The analyzer
// waits for every check to return before bucketing its issues.
type CheckFunc func(ctx context.Context, rc *RuleContext) error

// RuleDef describes a rule and carries its check.
// A RuleDef is immutable once registered in a Catalog.
type RuleDef struct {
	ID          string
	Name        string
	Category    core.Category
	Description string
	Severity    core.Severity // default severity when the rule is unconfigured
	Fixable     bool

	Deprecated bool
	ReplacedBy []string

	// OptionSchema is a JSON Schema document validating the rule's options
	// object. Empty means the rule accepts any options.
	OptionSchema   string
	DefaultOptions map[string]any

	Check CheckFunc

	// Source is "builtin" or the path of the file a custom rule was loaded from.
	Source string

	// Documentation fields
	Rationale   string
	BadExample  string
	GoodExample string
	Fix         string
}

// ConfigKeys returns the option keys present in the rule's defaults, sorted.
func (r RuleDef) ConfigKeys() []string {
	if len(r.DefaultOptions) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.DefaultOptions))
	for k := range r.DefaultOptions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Info extracts metadata for documentation/tooling.
func (r RuleDef) Info() core.RuleInfo {
	source := r.Source
	if source == "" {
		source = "builtin"
	}
	return core.RuleInfo{
		ID:              r.ID,
		Name:            r.Name,
		Category:        r.Category,
		Description:     r.Description,
		DefaultSeverity: r.Severity,
		Fixable:         r.Fixable,
		Deprecated:      r.Deprecated,
		ReplacedBy:      r.ReplacedBy,
		ConfigKeys:      r.ConfigKeys(),
		Source:          source,
		Rationale:       r.Rationale,
		BadExample:      r.BadExample,
		GoodExample:     r.GoodExample,
		Fix:             r.Fix,
	}
}

// RuleContext is what a check sees: one file, already parsed and
// schema-checked, plus the rule's effective options.
type RuleContext struct {
	FilePath string
	Category core.Category
	Content  string

	// Data is the parsed JSON document for JSON categories and the
	// frontmatter map for markdown categories (nil when absent).
	Data any
	// Body is the markdown body after the frontmatter block.
	Body string
	// BodyLine is the 1-based line the body starts on.
	BodyLine int

	// Options is the rule's default options overlaid with the first
	// configured options object. Never nil.
	Options map[string]any

	mu     sync.Mutex
	issues []core.Issue
}

// Report records a finding. Severity and RuleID are filled in by the analyzer;
// File defaults to the context's path.
func (rc *RuleContext) Report(issue core.Issue) {
	if issue.File == "" {
		issue.File = rc.FilePath
	}
	rc.mu.Lock()
	rc.issues = append(rc.issues, issue)
	rc.mu.Unlock()
}

// Reportf records a finding at line with a formatted message.
func (rc *RuleContext) Reportf(line int, format string, args ...any) {
	rc.Report(core.Issue{Line: line, Message: fmt.Sprintf(format, args...)})
}

// Issues returns a copy of the findings reported so far.
func (rc *RuleContext) Issues() []core.Issue {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]core.Issue, len(rc.issues))
	copy(out, rc.issues)
	return out
}

// Frontmatter returns Data as a map, or nil for documents without one.
func (rc *RuleContext) Frontmatter() map[string]any {
	m, _ := rc.Data.(map[string]any)
	return m
}

// LineOf returns the line of the first occurrence of needle in the content, or 0.
func (rc *RuleContext) LineOf(needle string) int {
	return LineOf(rc.Content, needle)
}

// KeyLine returns the line where a JSON or YAML key is declared, or 0.
func (rc *RuleContext) KeyLine(key string) int {
	return KeyLine(rc.Content, key)
}

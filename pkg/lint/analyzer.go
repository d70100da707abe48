package lint

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"

	"github.com/leapstack-labs/claudelint/pkg/core"
)

// Target is one parsed file handed to the analyzer.
type Target struct {
	Path     string
	Category core.Category
	Content  string
	Data     any
	Body     string
	BodyLine int
}

// Analyzer runs the catalog's rules for a file's category, gated and
// configured by the resolver.
type Analyzer struct {
	catalog  *Catalog
	resolver *Resolver
	logger   *slog.Logger
}

// NewAnalyzer creates an analyzer. A nil logger discards output.
func NewAnalyzer(catalog *Catalog, resolver *Resolver, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{catalog: catalog, resolver: resolver, logger: logger}
}

// Analyze runs every enabled rule of the target's category and returns the
// issues, each tagged with its rule id and the rule's resolved severity.
// A failing rule becomes one error issue; the remaining rules still run.
func (a *Analyzer) Analyze(ctx context.Context, t *Target) []core.Issue {
	var issues []core.Issue

	for _, rule := range a.catalog.ByCategory(t.Category) {
		if ctx.Err() != nil {
			break
		}
		if !a.resolver.IsRuleEnabled(rule.ID, t.Path) {
			continue
		}
		severity := a.resolver.Severity(rule.ID, t.Path)

		rc := &RuleContext{
			FilePath: t.Path,
			Category: t.Category,
			Content:  t.Content,
			Data:     t.Data,
			Body:     t.Body,
			BodyLine: t.BodyLine,
			Options:  effectiveOptions(rule, a.resolver.RuleOptions(rule.ID, t.Path)),
		}

		err := a.runCheck(ctx, rule, rc)
		for _, issue := range rc.Issues() {
			issue.RuleID = rule.ID
			issue.Severity = severity
			if issue.Explanation == "" {
				issue.Explanation = rule.Description
			}
			issues = append(issues, issue)
		}
		if err != nil {
			a.logger.Debug("rule failed", "rule", rule.ID, "file", t.Path, "error", err)
			issues = append(issues, core.Issue{
				Message:  fmt.Sprintf("rule %q failed: %v", rule.ID, err),
				File:     t.Path,
				RuleID:   rule.ID,
				Severity: core.SeverityError,
			})
		}
	}

	return issues
}

// runCheck calls the rule's check, turning a panic into an error.
func (a *Analyzer) runCheck(ctx context.Context, rule RuleDef, rc *RuleContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("rule panicked", "rule", rule.ID, "file", rc.FilePath, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return rule.Check(ctx, rc)
}

// effectiveOptions overlays the first configured options object on the
// rule's defaults.
func effectiveOptions(rule RuleDef, configured []map[string]any) map[string]any {
	opts := make(map[string]any, len(rule.DefaultOptions))
	maps.Copy(opts, rule.DefaultOptions)
	if len(configured) > 0 {
		maps.Copy(opts, configured[0])
	}
	return opts
}

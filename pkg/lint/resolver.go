package lint

import (
	"fmt"
	"log/slog"
	"maps"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/diagnostics"
)

// OptionErrorPolicy decides what happens to a rule whose configured options
// fail its option schema for a file. In both cases a diagnostic is recorded
// and the rule is left out of the resolved map.
type OptionErrorPolicy int

const (
	// FallbackToDefaults treats the rule as unconfigured: it runs at its
	// catalog default severity with its default options.
	FallbackToDefaults OptionErrorPolicy = iota
	// DisableRule turns the rule off for that file.
	DisableRule
)

// String returns the flag spelling of the policy.
func (p OptionErrorPolicy) String() string {
	if p == DisableRule {
		return "disable"
	}
	return "defaults"
}

// ParseOptionErrorPolicy accepts "defaults" or "disable".
func ParseOptionErrorPolicy(s string) (OptionErrorPolicy, error) {
	switch strings.ToLower(s) {
	case "", "defaults":
		return FallbackToDefaults, nil
	case "disable":
		return DisableRule, nil
	default:
		return FallbackToDefaults, fmt.Errorf("invalid option error policy %q (expected defaults or disable)", s)
	}
}

// ResolvedRule is the effective configuration of one rule for one file.
type ResolvedRule struct {
	RuleID   string
	Severity core.Severity
	// Options holds the configured options object, or is empty when the
	// rule was configured with a bare severity.
	Options []map[string]any
}

type resolution struct {
	rules map[string]ResolvedRule
	// rejected holds rules whose options failed validation for this path.
	rejected map[string]struct{}
}

// Resolver computes the effective rule configuration for a file path:
// base rules, then every matching override in declaration order, so the
// last matching override wins.
//
// Results are cached per exact path string. The cache is never evicted
// and grows with the number of distinct paths; call ClearCache after
// reloading configuration. Concurrent use is safe. Two goroutines
// resolving the same uncached path may both compute it, with equal results.
type Resolver struct {
	catalog *Catalog
	config  *Config
	baseDir string
	diags   *diagnostics.Collector
	policy  OptionErrorPolicy
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[string]*resolution

	hits   atomic.Int64
	misses atomic.Int64
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithBaseDir sets the directory override patterns are relative to.
// Absolute file paths under it are made relative before matching.
func WithBaseDir(dir string) ResolverOption {
	return func(r *Resolver) { r.baseDir = dir }
}

// WithDiagnostics sets the collector option violations are recorded in.
func WithDiagnostics(c *diagnostics.Collector) ResolverOption {
	return func(r *Resolver) { r.diags = c }
}

// WithOptionErrorPolicy sets what happens to rules with invalid options.
func WithOptionErrorPolicy(p OptionErrorPolicy) ResolverOption {
	return func(r *Resolver) { r.policy = p }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a resolver over a catalog and configuration.
// A nil config behaves like an empty one.
func NewResolver(catalog *Catalog, cfg *Config, opts ...ResolverOption) *Resolver {
	if cfg == nil {
		cfg = NewConfig()
	}
	r := &Resolver{
		catalog: catalog,
		config:  cfg,
		cache:   make(map[string]*resolution),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.diags == nil {
		r.diags = diagnostics.NewCollector(nil)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Policy returns the option error policy in effect.
func (r *Resolver) Policy() OptionErrorPolicy {
	return r.policy
}

// ResolveForFile returns the effective configuration of every rule the
// configuration mentions for filePath. Unmentioned rules are absent.
// The returned map is a copy and may be modified by the caller.
func (r *Resolver) ResolveForFile(filePath string) map[string]ResolvedRule {
	return maps.Clone(r.resolve(filePath).rules)
}

func (r *Resolver) resolve(filePath string) *resolution {
	r.mu.RLock()
	res, ok := r.cache[filePath]
	r.mu.RUnlock()
	if ok {
		r.hits.Add(1)
		return res
	}

	r.misses.Add(1)
	res = r.compute(filePath)

	r.mu.Lock()
	r.cache[filePath] = res
	r.mu.Unlock()
	return res
}

func (r *Resolver) compute(filePath string) *resolution {
	merged := make(RuleSettings, len(r.config.Rules))
	maps.Copy(merged, r.config.Rules)

	rel := r.matchPath(filePath)
	for i, o := range r.config.Overrides {
		if !matchesAny(o.Files, rel) {
			continue
		}
		r.logger.Debug("override applies", "file", filePath, "override", i)
		maps.Copy(merged, o.Rules)
	}

	res := &resolution{
		rules:    make(map[string]ResolvedRule, len(merged)),
		rejected: make(map[string]struct{}),
	}
	for id, setting := range merged {
		resolved := ResolvedRule{RuleID: id, Severity: setting.Severity, Options: []map[string]any{}}
		if setting.HasOptions {
			if err := r.checkOptions(id, setting.Options, filePath); err != nil {
				res.rejected[id] = struct{}{}
				continue
			}
			resolved.Options = []map[string]any{setting.Options}
		}
		res.rules[id] = resolved
	}
	return res
}

func (r *Resolver) checkOptions(id string, opts map[string]any, filePath string) error {
	if !r.catalog.Exists(id) {
		return nil
	}
	violations, err := r.catalog.ValidateOptions(id, opts)
	if err == nil && len(violations) == 0 {
		return nil
	}

	detail := ""
	if err != nil {
		detail = err.Error()
	} else {
		parts := make([]string, len(violations))
		for i, v := range violations {
			parts[i] = v.String()
		}
		detail = strings.Join(parts, "; ")
	}
	r.diags.Warn("resolver", "invalid-rule-options",
		fmt.Sprintf("invalid options for rule %q: %s", id, detail),
		map[string]any{"rule": id, "file": filePath, "policy": r.policy.String()})
	return fmt.Errorf("invalid options for %s", id)
}

// IsRuleEnabled reports whether a rule runs for filePath. A configured rule is
// enabled unless its severity is off. An unconfigured rule is enabled if it is
// in the catalog with a default severity other than off.
func (r *Resolver) IsRuleEnabled(ruleID, filePath string) bool {
	return r.Severity(ruleID, filePath) != core.SeverityOff
}

// Severity returns the effective severity of a rule for filePath.
// Unknown, unconfigured rules are off.
func (r *Resolver) Severity(ruleID, filePath string) core.Severity {
	res := r.resolve(filePath)
	if rr, ok := res.rules[ruleID]; ok {
		return rr.Severity
	}
	if _, rejected := res.rejected[ruleID]; rejected && r.policy == DisableRule {
		return core.SeverityOff
	}
	def, ok := r.catalog.GetRule(ruleID)
	if !ok {
		return core.SeverityOff
	}
	return def.Severity
}

// RuleOptions returns the configured options for a rule, or the catalog's
// default options wrapped in a one-element slice, or an empty slice.
func (r *Resolver) RuleOptions(ruleID, filePath string) []map[string]any {
	if rr, ok := r.resolve(filePath).rules[ruleID]; ok {
		return rr.Options
	}
	if def, ok := r.catalog.GetRule(ruleID); ok && len(def.DefaultOptions) > 0 {
		return []map[string]any{def.DefaultOptions}
	}
	return []map[string]any{}
}

// ClearCache drops every cached resolution.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	r.cache = make(map[string]*resolution)
	r.mu.Unlock()
}

// CacheStats returns the number of cache hits and misses so far.
func (r *Resolver) CacheStats() (hits, misses int64) {
	return r.hits.Load(), r.misses.Load()
}

// matchPath turns filePath into the slash-separated form patterns are
// matched against.
func (r *Resolver) matchPath(filePath string) string {
	p := filePath
	if r.baseDir != "" && filepath.IsAbs(p) {
		if rel, err := filepath.Rel(r.baseDir, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	p = filepath.ToSlash(p)
	return strings.TrimPrefix(p, "./")
}

// matchesAny reports whether any pattern matches p. A pattern without a
// slash also matches the base name, so "*.json" applies in any directory.
func matchesAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, path.Base(p)); ok {
				return true
			}
		}
	}
	return false
}

package lint

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/diagnostics"
)

const maxOptionSchema = `{
	"type": "object",
	"properties": {"max": {"type": "integer", "minimum": 1}},
	"additionalProperties": false
}`

func resolverCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	c.MustRegister(testRule("alpha", core.CategoryClaudeMD))
	c.MustRegister(testRule("beta", core.CategorySkills))

	withOpts := testRule("sized", core.CategoryClaudeMD)
	withOpts.OptionSchema = maxOptionSchema
	withOpts.DefaultOptions = map[string]any{"max": 500}
	c.MustRegister(withOpts)

	quiet := testRule("quiet", core.CategoryHooks)
	quiet.Severity = core.SeverityOff
	c.MustRegister(quiet)
	return c
}

func sev(s core.Severity) RuleSetting { return RuleSetting{Severity: s} }

func TestResolver_LastMatchingOverrideWins(t *testing.T) {
	cfg := NewConfig().
		SetSeverity("alpha", core.SeverityWarn).
		AddOverride([]string{"**/*.md"}, RuleSettings{"alpha": sev(core.SeverityError)}).
		AddOverride([]string{"docs/**"}, RuleSettings{"alpha": sev(core.SeverityOff)}).
		AddOverride([]string{"*.json"}, RuleSettings{"alpha": sev(core.SeverityWarn)})

	r := NewResolver(resolverCatalog(t), cfg)

	tests := []struct {
		path string
		want core.Severity
	}{
		{"CLAUDE.md", core.SeverityError},            // first override only
		{"docs/guide/CLAUDE.md", core.SeverityOff},   // both match, the later one wins
		{"src/CLAUDE.md", core.SeverityError},        // first override only
		{".claude/settings.json", core.SeverityWarn}, // base name match of *.json
		{"notes.txt", core.SeverityWarn},             // base only
		{"./docs/CLAUDE.md", core.SeverityOff},       // leading ./ is ignored
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := r.ResolveForFile(tt.path)
			require.Contains(t, got, "alpha")
			assert.Equal(t, tt.want, got["alpha"].Severity)
		})
	}
}

func TestResolver_DeclarationOrderNotSpecificity(t *testing.T) {
	// The broad pattern is declared last, so it wins even over a narrower one.
	cfg := NewConfig().
		AddOverride([]string{"docs/CLAUDE.md"}, RuleSettings{"alpha": sev(core.SeverityOff)}).
		AddOverride([]string{"**"}, RuleSettings{"alpha": sev(core.SeverityError)})

	r := NewResolver(resolverCatalog(t), cfg)
	assert.Equal(t, core.SeverityError, r.ResolveForFile("docs/CLAUDE.md")["alpha"].Severity)
}

func TestResolver_BaseOnlyRoundTrip(t *testing.T) {
	cfg := NewConfig().
		SetSeverity("alpha", core.SeverityError).
		SetSeverity("beta", core.SeverityOff).
		SetSeverity("not-in-catalog", core.SeverityWarn)

	r := NewResolver(resolverCatalog(t), cfg)
	got := r.ResolveForFile("any/where/file.md")

	want := map[string]ResolvedRule{
		"alpha":          {RuleID: "alpha", Severity: core.SeverityError, Options: []map[string]any{}},
		"beta":           {RuleID: "beta", Severity: core.SeverityOff, Options: []map[string]any{}},
		"not-in-catalog": {RuleID: "not-in-catalog", Severity: core.SeverityWarn, Options: []map[string]any{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveForFile mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_UnmentionedRulesAbsent(t *testing.T) {
	r := NewResolver(resolverCatalog(t), nil)
	got := r.ResolveForFile("CLAUDE.md")
	assert.Empty(t, got)
}

func TestResolver_CachedAndIdempotent(t *testing.T) {
	cfg := NewConfig().
		SetRuleOptions("sized", core.SeverityWarn, map[string]any{"max": 10}).
		AddOverride([]string{"**/*.md"}, RuleSettings{"alpha": sev(core.SeverityError)})
	r := NewResolver(resolverCatalog(t), cfg)

	first := r.ResolveForFile("a/CLAUDE.md")
	hits, misses := r.CacheStats()
	assert.Equal(t, int64(0), hits)
	assert.Equal(t, int64(1), misses)

	second := r.ResolveForFile("a/CLAUDE.md")
	hits, misses = r.CacheStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second resolution differs (-first +second):\n%s", diff)
	}

	// Callers get a copy; mutating it does not poison the cache.
	delete(first, "alpha")
	assert.Contains(t, r.ResolveForFile("a/CLAUDE.md"), "alpha")

	// A different spelling of the same file is a different cache key.
	r.ResolveForFile("./a/CLAUDE.md")
	_, misses = r.CacheStats()
	assert.Equal(t, int64(2), misses)

	r.ClearCache()
	r.ResolveForFile("a/CLAUDE.md")
	_, misses = r.CacheStats()
	assert.Equal(t, int64(3), misses)
}

func TestResolver_IsRuleEnabled(t *testing.T) {
	cfg := NewConfig().
		SetSeverity("alpha", core.SeverityOff).
		SetSeverity("beta", core.SeverityWarn).
		AddOverride([]string{"special/**"}, RuleSettings{
			"alpha": sev(core.SeverityError),
			"quiet": sev(core.SeverityWarn),
		})
	r := NewResolver(resolverCatalog(t), cfg)

	tests := []struct {
		rule, path string
		want       bool
	}{
		{"alpha", "CLAUDE.md", false},
		{"alpha", "special/CLAUDE.md", true},
		{"beta", "SKILL.md", true},
		{"sized", "CLAUDE.md", true},   // unconfigured, catalog default warn
		{"quiet", "hooks.json", false}, // unconfigured, catalog default off
		{"quiet", "special/hooks.json", true},
		{"missing", "CLAUDE.md", false}, // not in catalog
	}
	for _, tt := range tests {
		t.Run(tt.rule+"@"+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsRuleEnabled(tt.rule, tt.path))
			// Enabled iff the effective severity is not off.
			assert.Equal(t, r.Severity(tt.rule, tt.path) != core.SeverityOff, r.IsRuleEnabled(tt.rule, tt.path))
		})
	}
}

func TestResolver_RuleOptions(t *testing.T) {
	cfg := NewConfig().
		SetSeverity("alpha", core.SeverityWarn).
		AddOverride([]string{"big/**"}, RuleSettings{
			"sized": {Severity: core.SeverityError, Options: map[string]any{"max": 2000}, HasOptions: true},
		})
	r := NewResolver(resolverCatalog(t), cfg)

	assert.Equal(t, []map[string]any{{"max": 2000}}, r.RuleOptions("sized", "big/CLAUDE.md"))
	assert.Equal(t, []map[string]any{{"max": 500}}, r.RuleOptions("sized", "CLAUDE.md"), "defaults when unconfigured")
	assert.Equal(t, []map[string]any{}, r.RuleOptions("alpha", "CLAUDE.md"), "bare severity has no options")
	assert.Equal(t, []map[string]any{}, r.RuleOptions("beta", "SKILL.md"), "no defaults declared")
}

func TestResolver_InvalidOptions(t *testing.T) {
	bad := RuleSettings{
		"sized": {Severity: core.SeverityError, Options: map[string]any{"max": 0}, HasOptions: true},
	}

	t.Run("fallback to defaults", func(t *testing.T) {
		diags := diagnostics.NewCollector(nil)
		r := NewResolver(resolverCatalog(t), NewConfig().AddOverride([]string{"**"}, bad), WithDiagnostics(diags))

		got := r.ResolveForFile("CLAUDE.md")
		assert.NotContains(t, got, "sized", "invalid rule is excluded from the map")
		assert.True(t, r.IsRuleEnabled("sized", "CLAUDE.md"))
		assert.Equal(t, core.SeverityWarn, r.Severity("sized", "CLAUDE.md"), "catalog default applies")
		assert.Equal(t, []map[string]any{{"max": 500}}, r.RuleOptions("sized", "CLAUDE.md"))

		all := diags.All()
		require.Len(t, all, 1)
		assert.Equal(t, "invalid-rule-options", all[0].Code)
		assert.Equal(t, "sized", all[0].Context["rule"])
		assert.Equal(t, diagnostics.LevelWarning, all[0].Level)
	})

	t.Run("disable", func(t *testing.T) {
		diags := diagnostics.NewCollector(nil)
		r := NewResolver(resolverCatalog(t), NewConfig().AddOverride([]string{"**"}, bad),
			WithDiagnostics(diags), WithOptionErrorPolicy(DisableRule))

		assert.NotContains(t, r.ResolveForFile("CLAUDE.md"), "sized")
		assert.False(t, r.IsRuleEnabled("sized", "CLAUDE.md"))
		assert.Equal(t, 1, diags.Len(), "diagnostic recorded once per resolution")
	})

	t.Run("only affects matching files", func(t *testing.T) {
		r := NewResolver(resolverCatalog(t), NewConfig().AddOverride([]string{"bad/**"}, bad),
			WithOptionErrorPolicy(DisableRule))
		assert.True(t, r.IsRuleEnabled("sized", "good/CLAUDE.md"))
		assert.False(t, r.IsRuleEnabled("sized", "bad/CLAUDE.md"))
	})
}

func TestResolver_AbsolutePathsRelativeToBaseDir(t *testing.T) {
	base := t.TempDir()
	cfg := NewConfig().AddOverride([]string{".claude/skills/**"}, RuleSettings{"beta": sev(core.SeverityError)})
	r := NewResolver(resolverCatalog(t), cfg, WithBaseDir(base))

	abs := filepath.Join(base, ".claude", "skills", "demo", "SKILL.md")
	assert.Equal(t, core.SeverityError, r.Severity("beta", abs))

	outside := filepath.Join(filepath.Dir(base), "elsewhere", ".claude", "skills", "x", "SKILL.md")
	assert.Equal(t, core.SeverityWarn, r.Severity("beta", outside))
}

func TestResolver_ConcurrentResolution(t *testing.T) {
	cfg := NewConfig().AddOverride([]string{"even/**"}, RuleSettings{"alpha": sev(core.SeverityError)})
	r := NewResolver(resolverCatalog(t), cfg)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dir := "odd"
			if i%2 == 0 {
				dir = "even"
			}
			p := fmt.Sprintf("%s/%d/CLAUDE.md", dir, i%8)
			got := r.Severity("alpha", p)
			if dir == "even" {
				assert.Equal(t, core.SeverityError, got)
			} else {
				assert.Equal(t, core.SeverityWarn, got)
			}
		}(i)
	}
	wg.Wait()
}

func TestParseOptionErrorPolicy(t *testing.T) {
	p, err := ParseOptionErrorPolicy("disable")
	require.NoError(t, err)
	assert.Equal(t, DisableRule, p)

	p, err = ParseOptionErrorPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FallbackToDefaults, p)

	_, err = ParseOptionErrorPolicy("ignore")
	assert.Error(t, err)
}

package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/diagnostics"
)

func TestParseRuleSetting(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    RuleSetting
		wantErr bool
	}{
		{name: "bare string", raw: "warn", want: RuleSetting{Severity: core.SeverityWarn}},
		{name: "warning alias", raw: "warning", want: RuleSetting{Severity: core.SeverityWarn}},
		{name: "numeric", raw: 2, want: RuleSetting{Severity: core.SeverityError}},
		{
			name: "object with options",
			raw:  map[string]any{"severity": "error", "options": map[string]any{"max": 3}},
			want: RuleSetting{Severity: core.SeverityError, Options: map[string]any{"max": 3}, HasOptions: true},
		},
		{
			name: "object without options",
			raw:  map[string]any{"severity": "off"},
			want: RuleSetting{Severity: core.SeverityOff},
		},
		{
			name: "list form",
			raw:  []any{"warn", map[string]any{"max": 1}},
			want: RuleSetting{Severity: core.SeverityWarn, Options: map[string]any{"max": 1}, HasOptions: true},
		},
		{name: "bad severity", raw: "loud", wantErr: true},
		{name: "object missing severity", raw: map[string]any{"options": map[string]any{}}, wantErr: true},
		{name: "object unknown key", raw: map[string]any{"severity": "warn", "level": 1}, wantErr: true},
		{name: "options not object", raw: map[string]any{"severity": "warn", "options": "x"}, wantErr: true},
		{name: "empty list", raw: []any{}, wantErr: true},
		{name: "bool", raw: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRuleSetting(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeConfig(t *testing.T) {
	raw := map[string]any{
		"rules": map[string]any{
			"claude-md-size": "error",
			"skill-description-length": map[string]any{
				"severity": "warn",
				"options":  map[string]any{"max": 200},
			},
		},
		"overrides": []any{
			map[string]any{
				"files": []any{"docs/**/*.md"},
				"rules": map[string]any{"claude-md-size": "off"},
			},
		},
	}

	cfg, err := DecodeConfig(".claudelint.yaml", raw)
	require.NoError(t, err)

	assert.Equal(t, core.SeverityError, cfg.Rules["claude-md-size"].Severity)
	desc := cfg.Rules["skill-description-length"]
	assert.True(t, desc.HasOptions)
	assert.Equal(t, 200, desc.Options["max"])

	require.Len(t, cfg.Overrides, 1)
	assert.Equal(t, []string{"docs/**/*.md"}, cfg.Overrides[0].Files)
	assert.Equal(t, core.SeverityOff, cfg.Overrides[0].Rules["claude-md-size"].Severity)
}

func TestDecodeConfig_ShapeErrorsAreFatal(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"bad severity", map[string]any{"rules": map[string]any{"a": "loud"}}},
		{"unknown top-level key", map[string]any{"rulez": map[string]any{}}},
		{"override files not a list", map[string]any{"overrides": []any{map[string]any{"files": map[string]any{}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeConfig("cfg.yaml", tt.raw)
			require.Error(t, err)
			assert.True(t, IsFatal(err))
			assert.Contains(t, err.Error(), "cfg.yaml")
		})
	}
}

func TestDecodeConfig_Empty(t *testing.T) {
	cfg, err := DecodeConfig("", map[string]any{})
	require.NoError(t, err)
	assert.NotNil(t, cfg.Rules)
	assert.Empty(t, cfg.Overrides)
}

func TestConfig_FluentSetters(t *testing.T) {
	cfg := NewConfig().
		SetRuleOptions("a", core.SeverityWarn, map[string]any{"x": 1}).
		SetSeverity("a", core.SeverityError).
		Disable("b").
		AddOverride([]string{"*.json"}, RuleSettings{"a": {Severity: core.SeverityOff}})

	assert.Equal(t, core.SeverityError, cfg.Rules["a"].Severity)
	assert.True(t, cfg.Rules["a"].HasOptions, "SetSeverity keeps options")
	assert.Equal(t, core.SeverityOff, cfg.Rules["b"].Severity)
	assert.Len(t, cfg.Overrides, 1)
}

func TestCheckConfig(t *testing.T) {
	c := NewCatalog()
	c.MustRegister(testRule("current", core.CategorySkills))
	old := testRule("old", core.CategorySkills)
	old.Deprecated = true
	old.ReplacedBy = []string{"current"}
	c.MustRegister(old)

	cfg := NewConfig().
		SetSeverity("current", core.SeverityError).
		SetSeverity("old", core.SeverityWarn).
		SetSeverity("typo", core.SeverityWarn).
		AddOverride(nil, RuleSettings{"also-typo": {Severity: core.SeverityOff}})

	diags := diagnostics.NewCollector(nil)
	CheckConfig(cfg, c, diags)

	codes := map[string]int{}
	for _, d := range diags.All() {
		codes[d.Code]++
	}
	assert.Equal(t, 2, codes["unknown-rule"])
	assert.Equal(t, 1, codes["deprecated-rule"])
	assert.Equal(t, 1, codes["empty-override"])
	assert.False(t, diags.HasErrors())
}

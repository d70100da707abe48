package lint

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/diagnostics"
)

// RuleSetting is the normalized value of one configured rule. The accepted
// spellings are collapsed into it when configuration is parsed:
//
//	claude-md-size: warn
//	claude-md-size: {severity: warn, options: {maxLines: 300}}
//	claude-md-size: [warn, {maxLines: 300}]
type RuleSetting struct {
	Severity   core.Severity
	Options    map[string]any
	HasOptions bool
}

// RuleSettings maps rule ids to their settings.
type RuleSettings map[string]RuleSetting

// Override applies Rules to files matching any of the Files patterns.
type Override struct {
	Files []string     `mapstructure:"files"`
	Rules RuleSettings `mapstructure:"rules"`
}

// Config is the base rule configuration plus ordered overrides.
type Config struct {
	Rules     RuleSettings `mapstructure:"rules"`
	Overrides []Override   `mapstructure:"overrides"`
}

// NewConfig creates an empty configuration: every rule runs at its default.
func NewConfig() *Config {
	return &Config{
		Rules: make(RuleSettings),
	}
}

// SetSeverity sets the base severity for a rule, keeping any options.
func (c *Config) SetSeverity(ruleID string, severity core.Severity) *Config {
	s := c.Rules[ruleID]
	s.Severity = severity
	c.Rules[ruleID] = s
	return c
}

// SetRuleOptions sets the base severity and options for a rule.
func (c *Config) SetRuleOptions(ruleID string, severity core.Severity, opts map[string]any) *Config {
	c.Rules[ruleID] = RuleSetting{Severity: severity, Options: opts, HasOptions: true}
	return c
}

// Disable turns a rule off in the base configuration.
func (c *Config) Disable(ruleID string) *Config {
	return c.SetSeverity(ruleID, core.SeverityOff)
}

// AddOverride appends an override. Later overrides win over earlier ones.
func (c *Config) AddOverride(files []string, rules RuleSettings) *Config {
	c.Overrides = append(c.Overrides, Override{Files: files, Rules: rules})
	return c
}

// ParseRuleSetting normalizes one raw rule value (string, number, object or
// [severity, options] list).
func ParseRuleSetting(raw any) (RuleSetting, error) {
	switch v := raw.(type) {
	case RuleSetting:
		return v, nil
	case string:
		return parseSeverityValue(v)
	case int, int64, float64:
		return parseSeverityValue(fmt.Sprint(v))
	case map[string]any:
		return parseRuleObject(v)
	case []any:
		if len(v) == 0 || len(v) > 2 {
			return RuleSetting{}, fmt.Errorf("expected [severity] or [severity, options], got %d elements", len(v))
		}
		s, err := ParseRuleSetting(v[0])
		if err != nil {
			return RuleSetting{}, err
		}
		if len(v) == 2 {
			opts, ok := v[1].(map[string]any)
			if !ok {
				return RuleSetting{}, fmt.Errorf("options must be an object, got %T", v[1])
			}
			s.Options = opts
			s.HasOptions = true
		}
		return s, nil
	default:
		return RuleSetting{}, fmt.Errorf("expected a severity or {severity, options}, got %T", raw)
	}
}

func parseSeverityValue(s string) (RuleSetting, error) {
	sev, ok := core.ParseSeverity(s)
	if !ok {
		return RuleSetting{}, fmt.Errorf("invalid severity %s (expected off, warn or error)", strconv.Quote(s))
	}
	return RuleSetting{Severity: sev}, nil
}

func parseRuleObject(m map[string]any) (RuleSetting, error) {
	for k := range m {
		if k != "severity" && k != "options" {
			return RuleSetting{}, fmt.Errorf("unknown key %q (expected severity and options)", k)
		}
	}
	rawSev, ok := m["severity"]
	if !ok {
		return RuleSetting{}, fmt.Errorf("missing severity")
	}
	s, err := ParseRuleSetting(rawSev)
	if err != nil {
		return RuleSetting{}, err
	}
	if rawOpts, ok := m["options"]; ok && rawOpts != nil {
		opts, ok := rawOpts.(map[string]any)
		if !ok {
			return RuleSetting{}, fmt.Errorf("options must be an object, got %T", rawOpts)
		}
		s.Options = opts
		s.HasOptions = true
	}
	return s, nil
}

var ruleSettingType = reflect.TypeOf(RuleSetting{})

func ruleSettingHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != ruleSettingType {
		return data, nil
	}
	return ParseRuleSetting(data)
}

// DecodeConfig builds a Config from the raw "rules" and "overrides" values of
// a configuration document. Any shape error is a *ConfigurationError.
func DecodeConfig(source string, raw map[string]any) (*Config, error) {
	cfg := NewConfig()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.DecodeHookFuncType(ruleSettingHook),
		ErrorUnused: true,
		Result:      cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &ConfigurationError{Source: source, Message: "invalid rule configuration", Err: err}
	}
	if cfg.Rules == nil {
		cfg.Rules = make(RuleSettings)
	}
	return cfg, nil
}

// CheckConfig reports configuration smells that do not stop the run:
// unknown rule ids, deprecated rules and overrides without file patterns.
func CheckConfig(cfg *Config, catalog *Catalog, diags *diagnostics.Collector) {
	if cfg == nil || diags == nil {
		return
	}

	check := func(where string, rules RuleSettings) {
		ids := make([]string, 0, len(rules))
		for id := range rules {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			def, ok := catalog.GetRule(id)
			if !ok {
				diags.Warn("config", "unknown-rule",
					fmt.Sprintf("unknown rule %q in %s", id, where),
					map[string]any{"rule": id})
				continue
			}
			if def.Deprecated {
				msg := fmt.Sprintf("rule %q is deprecated", id)
				if len(def.ReplacedBy) > 0 {
					msg += fmt.Sprintf("; use %v instead", def.ReplacedBy)
				}
				diags.Warn("config", "deprecated-rule", msg, map[string]any{"rule": id})
			}
		}
	}

	check("rules", cfg.Rules)
	for i, o := range cfg.Overrides {
		where := fmt.Sprintf("overrides[%d]", i)
		if len(o.Files) == 0 {
			diags.Warn("config", "empty-override",
				where+" has no file patterns and never applies", nil)
		}
		check(where, o.Rules)
	}
}

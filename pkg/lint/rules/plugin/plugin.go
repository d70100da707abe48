// Package plugin provides rules for .claude-plugin/plugin.json manifests.
package plugin

import (
	"context"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/internal/ruleutil"
)

// Rules returns the package's rules in registration order.
func Rules() []lint.RuleDef {
	return []lint.RuleDef{
		InvalidVersion,
		NameFormat,
	}
}

// InvalidVersion requires semantic versions.
var InvalidVersion = lint.RuleDef{
	ID:          "plugin-invalid-version",
	Name:        "plugin.invalid_version",
	Category:    core.CategoryPlugin,
	Description: "Plugin versions must follow semantic versioning.",
	Severity:    core.SeverityError,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		v := ruleutil.String(ruleutil.Map(rc.Data), "version")
		if v != "" && !ruleutil.Semver.MatchString(v) {
			rc.Reportf(rc.KeyLine("version"), "version %q is not a semantic version (e.g. 1.0.0)", v)
		}
		return nil
	},
	BadExample:  `"version": "v1.2"`,
	GoodExample: `"version": "1.2.0"`,
}

// NameFormat requires kebab-case plugin names.
var NameFormat = lint.RuleDef{
	ID:          "plugin-name-format",
	Name:        "plugin.name_format",
	Category:    core.CategoryPlugin,
	Description: "Plugin names must be lowercase kebab-case.",
	Severity:    core.SeverityError,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		name := ruleutil.String(ruleutil.Map(rc.Data), "name")
		if name != "" && !ruleutil.KebabCase.MatchString(name) {
			rc.Reportf(rc.KeyLine("name"), "plugin name %q must be lowercase kebab-case", name)
		}
		return nil
	},
	Rationale: "The name becomes the namespace of the plugin's commands, e.g. /my-plugin:deploy.",
}

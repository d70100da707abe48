// Package settings provides rules for .claude/settings.json files.
package settings

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/internal/ruleutil"
)

// Rules returns the package's rules in registration order.
func Rules() []lint.RuleDef {
	return []lint.RuleDef{
		PermissionDuplicate,
		InvalidPermissionRule,
	}
}

var permissionLists = []string{"allow", "ask", "deny"}

// PermissionDuplicate flags a permission listed twice in the same list.
var PermissionDuplicate = lint.RuleDef{
	ID:          "settings-permission-duplicate",
	Name:        "settings.permission_duplicate",
	Category:    core.CategorySettings,
	Description: "A permission rule should appear at most once per list.",
	Severity:    core.SeverityWarn,
	Fixable:     true,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		perms := ruleutil.Map(ruleutil.Map(rc.Data)["permissions"])
		for _, list := range permissionLists {
			seen := make(map[string]bool)
			for _, rule := range ruleutil.Strings(perms[list]) {
				if seen[rule] {
					rc.Report(core.Issue{
						Line:    rc.LineOf(`"` + rule + `"`),
						Message: fmt.Sprintf("permission %q appears more than once in permissions.%s", rule, list),
						Fix:     "Remove the duplicate entry",
					})
				}
				seen[rule] = true
			}
		}
		return nil
	},
}

// InvalidPermissionRule checks the Tool or Tool(specifier) grammar.
var InvalidPermissionRule = lint.RuleDef{
	ID:          "settings-invalid-permission-rule",
	Name:        "settings.invalid_permission_rule",
	Category:    core.CategorySettings,
	Description: "Permission rules must be a tool name, optionally followed by a specifier in parentheses.",
	Severity:    core.SeverityError,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		perms := ruleutil.Map(ruleutil.Map(rc.Data)["permissions"])
		for _, list := range permissionLists {
			for _, rule := range ruleutil.Strings(perms[list]) {
				if !ruleutil.ToolPattern.MatchString(rule) {
					rc.Reportf(rc.LineOf(`"`+rule+`"`), "invalid permission rule %q in permissions.%s", rule, list)
				}
			}
		}
		return nil
	},
	BadExample:  `"allow": ["bash(git status)"]`,
	GoodExample: `"allow": ["Bash(git status)"]`,
}

// Package commands provides rules for slash command files under .claude/commands.
package commands

import (
	"context"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/internal/ruleutil"
)

// Rules returns the package's rules in registration order.
func Rules() []lint.RuleDef {
	return []lint.RuleDef{AllowedToolsFormat}
}

// AllowedToolsFormat checks each allowed-tools entry.
var AllowedToolsFormat = lint.RuleDef{
	ID:          "command-allowed-tools-format",
	Name:        "commands.allowed_tools_format",
	Category:    core.CategoryCommands,
	Description: "allowed-tools entries must be a tool name, optionally with a specifier in parentheses.",
	Severity:    core.SeverityError,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		line := rc.KeyLine("allowed-tools")
		for _, tool := range ruleutil.Strings(rc.Frontmatter()["allowed-tools"]) {
			if !ruleutil.ToolPattern.MatchString(tool) {
				rc.Reportf(line, "invalid allowed-tools entry %q", tool)
			}
		}
		return nil
	},
	BadExample:  "allowed-tools: bash(git status)",
	GoodExample: "allowed-tools: Bash(git status:*), Read",
}

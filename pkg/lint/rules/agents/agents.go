// Package agents provides rules for subagent definitions under .claude/agents.
package agents

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/internal/ruleutil"
)

// Rules returns the package's rules in registration order.
func Rules() []lint.RuleDef {
	return []lint.RuleDef{
		NameMatchesFilename,
		UnknownModel,
	}
}

// NameMatchesFilename requires the agent name to equal the file's base name.
var NameMatchesFilename = lint.RuleDef{
	ID:          "agent-name-matches-filename",
	Name:        "agents.name_matches_filename",
	Category:    core.CategoryAgents,
	Description: "The agent name must match its file name.",
	Severity:    core.SeverityError,
	Fixable:     true,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		name := ruleutil.String(rc.Frontmatter(), "name")
		base := strings.TrimSuffix(filepath.Base(rc.FilePath), filepath.Ext(rc.FilePath))
		if name != "" && name != base {
			rc.Report(core.Issue{
				Line:    rc.KeyLine("name"),
				Message: fmt.Sprintf("agent name %q does not match file name %q", name, base),
				Fix:     fmt.Sprintf("Rename the file to %s.md", name),
			})
		}
		return nil
	},
}

var defaultModels = []any{"sonnet", "opus", "haiku", "inherit"}

// UnknownModel flags model aliases the assistant does not recognise.
var UnknownModel = lint.RuleDef{
	ID:          "agent-unknown-model",
	Name:        "agents.unknown_model",
	Category:    core.CategoryAgents,
	Description: "Agent models must be a known alias or a full model id.",
	Severity:    core.SeverityWarn,
	OptionSchema: `{
		"type": "object",
		"properties": {
			"models": {"type": "array", "items": {"type": "string"}, "minItems": 1}
		},
		"additionalProperties": false
	}`,
	DefaultOptions: map[string]any{"models": defaultModels},
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		model := ruleutil.String(rc.Frontmatter(), "model")
		if model == "" || strings.HasPrefix(model, "claude-") {
			return nil
		}
		known := lint.GetStringSliceOption(rc.Options, "models", nil)
		if !slices.Contains(known, model) {
			rc.Reportf(rc.KeyLine("model"), "unknown model %q (expected one of %s)", model, strings.Join(known, ", "))
		}
		return nil
	},
}

package claudemd

import (
	"context"
	"strings"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
)

// Empty flags memory files with no content.
var Empty = lint.RuleDef{
	ID:          "claude-md-empty",
	Name:        "claude-md.empty",
	Category:    core.CategoryClaudeMD,
	Description: "CLAUDE.md should not be empty.",
	Severity:    core.SeverityWarn,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		if strings.TrimSpace(rc.Body) == "" {
			rc.Reportf(1, "CLAUDE.md is empty")
		}
		return nil
	},
	Fix: "Add project instructions or delete the file.",
}

// Package outputstyles provides rules for output style files.
package outputstyles

import (
	"context"
	"strings"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/internal/ruleutil"
)

// Rules returns the package's rules in registration order.
func Rules() []lint.RuleDef {
	return []lint.RuleDef{MissingDescription}
}

// MissingDescription asks for a description, shown in the style picker.
var MissingDescription = lint.RuleDef{
	ID:          "output-style-missing-description",
	Name:        "output_styles.missing_description",
	Category:    core.CategoryOutputStyles,
	Description: "Output styles should have a description.",
	Severity:    core.SeverityWarn,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		if strings.TrimSpace(ruleutil.String(rc.Frontmatter(), "description")) == "" {
			rc.Reportf(1, "output style has no description")
		}
		return nil
	},
	Fix: "Add a description field to the frontmatter.",
}

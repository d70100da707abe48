package claudemd

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
)

const (
	defaultMaxLines = 500
	sizeFix         = "Move detailed material into separate files and import them with @path."
)

// FileSize flags memory files that are too long to stay useful in context.
var FileSize = lint.RuleDef{
	ID:          "claude-md-size",
	Name:        "claude-md.size",
	Category:    core.CategoryClaudeMD,
	Description: "CLAUDE.md should stay under a maximum number of lines.",
	Severity:    core.SeverityWarn,
	OptionSchema: `{
		"type": "object",
		"properties": {"maxLines": {"type": "integer", "minimum": 1}},
		"additionalProperties": false
	}`,
	DefaultOptions: map[string]any{"maxLines": defaultMaxLines},
	Check:          checkFileSize,

	Rationale: `The whole file is loaded into every session. Long memory files crowd out
the conversation and their later sections tend to be ignored.`,
	BadExample: `# CLAUDE.md with 1,200 lines of architecture notes`,
	GoodExample: `# CLAUDE.md
See @docs/architecture.md for details.`,
	Fix: sizeFix,
}

// LegacyMaxLines is the old name of FileSize, kept so existing configs still load.
var LegacyMaxLines = lint.RuleDef{
	ID:             "claude-md-max-lines",
	Name:           "claude-md.max_lines",
	Category:       core.CategoryClaudeMD,
	Description:    "Deprecated alias of claude-md-size.",
	Severity:       core.SeverityOff,
	Deprecated:     true,
	ReplacedBy:     []string{"claude-md-size"},
	OptionSchema:   FileSize.OptionSchema,
	DefaultOptions: FileSize.DefaultOptions,
	Check:          checkFileSize,
}

func checkFileSize(_ context.Context, rc *lint.RuleContext) error {
	limit := lint.GetIntOption(rc.Options, "maxLines", defaultMaxLines)
	lines := strings.Count(strings.TrimRight(rc.Content, "\n"), "\n") + 1
	if lines > limit {
		rc.Report(core.Issue{
			Line:    limit + 1,
			Message: fmt.Sprintf("CLAUDE.md has %d lines (max %d)", lines, limit),
			Fix:     sizeFix,
		})
	}
	return nil
}

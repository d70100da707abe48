// Package skills provides rules for SKILL.md files under .claude/skills.
package skills

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/internal/ruleutil"
)

// Rules returns the package's rules in registration order.
func Rules() []lint.RuleDef {
	return []lint.RuleDef{
		NameMatchesDirectory,
		NameFormat,
		DescriptionLength,
		DescriptionXMLTags,
	}
}

const maxNameLength = 64

// NameMatchesDirectory requires the skill name to equal its directory name.
var NameMatchesDirectory = lint.RuleDef{
	ID:          "skill-name-matches-directory",
	Name:        "skills.name_matches_directory",
	Category:    core.CategorySkills,
	Description: "The skill name must match the directory containing SKILL.md.",
	Severity:    core.SeverityError,
	Fixable:     true,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		name := ruleutil.String(rc.Frontmatter(), "name")
		dir := filepath.Base(filepath.Dir(rc.FilePath))
		if name != "" && name != dir {
			rc.Report(core.Issue{
				Line:    rc.KeyLine("name"),
				Message: fmt.Sprintf("skill name %q does not match directory %q", name, dir),
				Fix:     fmt.Sprintf("Rename the skill to %q or move it to a directory named %q", dir, name),
			})
		}
		return nil
	},
	Rationale: "Skills are looked up by directory; a mismatched name is confusing in listings.",
}

// NameFormat requires lowercase kebab-case names of bounded length.
var NameFormat = lint.RuleDef{
	ID:          "skill-name-format",
	Name:        "skills.name_format",
	Category:    core.CategorySkills,
	Description: "Skill names must be lowercase kebab-case and at most 64 characters.",
	Severity:    core.SeverityError,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		name := ruleutil.String(rc.Frontmatter(), "name")
		switch {
		case name == "":
		case len(name) > maxNameLength:
			rc.Reportf(rc.KeyLine("name"), "skill name is %d characters (max %d)", len(name), maxNameLength)
		case !ruleutil.KebabCase.MatchString(name):
			rc.Reportf(rc.KeyLine("name"), "skill name %q must be lowercase kebab-case", name)
		}
		return nil
	},
	BadExample:  "name: PDF_Helper",
	GoodExample: "name: pdf-helper",
}

// DescriptionLength bounds the description, which decides when a skill is used.
var DescriptionLength = lint.RuleDef{
	ID:          "skill-description-length",
	Name:        "skills.description_length",
	Category:    core.CategorySkills,
	Description: "Skill descriptions should be long enough to be useful and short enough to load cheaply.",
	Severity:    core.SeverityWarn,
	OptionSchema: `{
		"type": "object",
		"properties": {
			"min": {"type": "integer", "minimum": 0},
			"max": {"type": "integer", "minimum": 1}
		},
		"additionalProperties": false
	}`,
	DefaultOptions: map[string]any{"min": 20, "max": 1024},
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		desc := ruleutil.String(rc.Frontmatter(), "description")
		if desc == "" {
			return nil
		}
		minLen := lint.GetIntOption(rc.Options, "min", 20)
		maxLen := lint.GetIntOption(rc.Options, "max", 1024)
		line := rc.KeyLine("description")
		switch n := len([]rune(desc)); {
		case n < minLen:
			rc.Reportf(line, "skill description is %d characters; at least %d are recommended", n, minLen)
		case n > maxLen:
			rc.Reportf(line, "skill description is %d characters (max %d)", n, maxLen)
		}
		return nil
	},
	Rationale: "The description is what the model reads to decide whether to load the skill.",
}

// DescriptionXMLTags rejects markup in descriptions.
var DescriptionXMLTags = lint.RuleDef{
	ID:          "skill-description-xml-tags",
	Name:        "skills.description_xml_tags",
	Category:    core.CategorySkills,
	Description: "Skill descriptions must not contain XML-like tags.",
	Severity:    core.SeverityError,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		desc := ruleutil.String(rc.Frontmatter(), "description")
		if tag := ruleutil.XMLTag.FindString(desc); tag != "" {
			rc.Reportf(rc.KeyLine("description"), "skill description contains markup %s", tag)
		}
		return nil
	},
}

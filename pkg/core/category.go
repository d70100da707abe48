package core

import "strings"

// Category is the fixed kind of configuration file a rule applies to.
type Category string

// The closed set of categories.
const (
	CategoryClaudeMD     Category = "CLAUDE.md"
	CategorySkills       Category = "Skills"
	CategorySettings     Category = "Settings"
	CategoryHooks        Category = "Hooks"
	CategoryMCP          Category = "MCP"
	CategoryPlugin       Category = "Plugin"
	CategoryAgents       Category = "Agents"
	CategoryLSP          Category = "LSP"
	CategoryOutputStyles Category = "OutputStyles"
	CategoryCommands     Category = "Commands"
)

var categoryOrder = []Category{
	CategoryClaudeMD,
	CategorySkills,
	CategorySettings,
	CategoryHooks,
	CategoryMCP,
	CategoryPlugin,
	CategoryAgents,
	CategoryLSP,
	CategoryOutputStyles,
	CategoryCommands,
}

var validatorIDs = map[Category]string{
	CategoryClaudeMD:     "claude-md",
	CategorySkills:       "skills",
	CategorySettings:     "settings",
	CategoryHooks:        "hooks",
	CategoryMCP:          "mcp",
	CategoryPlugin:       "plugin",
	CategoryAgents:       "agents",
	CategoryLSP:          "lsp",
	CategoryOutputStyles: "output-styles",
	CategoryCommands:     "commands",
}

// Categories returns every category in reporting order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ValidatorID returns the validator identifier for the category, e.g. "skills".
func (c Category) ValidatorID() string {
	return validatorIDs[c]
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := validatorIDs[c]
	return ok
}

// IsMarkdown reports whether files of this category are markdown with frontmatter.
func (c Category) IsMarkdown() bool {
	switch c {
	case CategoryClaudeMD, CategorySkills, CategoryAgents, CategoryOutputStyles, CategoryCommands:
		return true
	default:
		return false
	}
}

// CategoryForValidator maps a validator identifier to its category.
func CategoryForValidator(id string) (Category, bool) {
	for c, vid := range validatorIDs {
		if vid == id {
			return c, true
		}
	}
	return "", false
}

// ParseCategory accepts either the category name or its validator id, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range categoryOrder {
		if strings.EqualFold(string(c), s) || strings.EqualFold(c.ValidatorID(), s) {
			return c, true
		}
	}
	return "", false
}

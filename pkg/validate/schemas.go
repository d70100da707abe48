package validate

import (
	"embed"
	"fmt"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/schema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaFiles maps categories to their structural schema. CLAUDE.md is free
// form and has none.
var schemaFiles = map[core.Category]string{
	core.CategorySkills:       "skills.json",
	core.CategorySettings:     "settings.json",
	core.CategoryHooks:        "hooks.json",
	core.CategoryMCP:          "mcp.json",
	core.CategoryPlugin:       "plugin.json",
	core.CategoryAgents:       "agents.json",
	core.CategoryLSP:          "lsp.json",
	core.CategoryOutputStyles: "output-styles.json",
	core.CategoryCommands:     "commands.json",
}

// BuiltinSchemas compiles the embedded category schemas.
func BuiltinSchemas() (map[core.Category]*schema.Schema, error) {
	out := make(map[core.Category]*schema.Schema, len(schemaFiles))
	for cat, name := range schemaFiles {
		src, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		s, err := schema.Compile(name, string(src))
		if err != nil {
			return nil, err
		}
		out[cat] = s
	}
	return out, nil
}

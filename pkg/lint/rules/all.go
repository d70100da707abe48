// Package rules registers the built-in rule catalog.
//
// Each category lives in its own subpackage exposing a Rules function.
// RegisterBuiltin adds all of them to a catalog in category order.
package rules

import (
	"fmt"

	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/agents"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/claudemd"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/commands"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/hooks"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/lsp"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/mcp"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/outputstyles"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/plugin"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/settings"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/skills"
)

// Builtin returns every built-in rule definition.
func Builtin() []lint.RuleDef {
	var all []lint.RuleDef
	for _, set := range [][]lint.RuleDef{
		claudemd.Rules(),
		skills.Rules(),
		settings.Rules(),
		hooks.Rules(),
		mcp.Rules(),
		plugin.Rules(),
		agents.Rules(),
		lsp.Rules(),
		outputstyles.Rules(),
		commands.Rules(),
	} {
		all = append(all, set...)
	}
	return all
}

// RegisterBuiltin registers every built-in rule with c.
func RegisterBuiltin(c *lint.Catalog) error {
	for _, def := range Builtin() {
		if err := c.Register(def); err != nil {
			return fmt.Errorf("register builtin rule %s: %w", def.ID, err)
		}
	}
	return nil
}

// NewCatalog returns a catalog holding the built-in rules.
func NewCatalog() (*lint.Catalog, error) {
	c := lint.NewCatalog()
	if err := RegisterBuiltin(c); err != nil {
		return nil, err
	}
	return c, nil
}

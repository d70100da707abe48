// Package mcp provides rules for .mcp.json server definitions.
package mcp

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules/internal/ruleutil"
)

// Rules returns the package's rules in registration order.
func Rules() []lint.RuleDef {
	return []lint.RuleDef{
		ServerMissingCommand,
		HardcodedSecret,
	}
}

func servers(rc *lint.RuleContext) map[string]any {
	return ruleutil.Map(ruleutil.Map(rc.Data)["mcpServers"])
}

// ServerMissingCommand requires every server to say how it is reached.
var ServerMissingCommand = lint.RuleDef{
	ID:          "mcp-server-missing-command",
	Name:        "mcp.server_missing_command",
	Category:    core.CategoryMCP,
	Description: "Each MCP server needs a command (stdio) or a url (sse/http).",
	Severity:    core.SeverityError,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		all := servers(rc)
		for _, name := range ruleutil.SortedKeys(all) {
			s := ruleutil.Map(all[name])
			if ruleutil.String(s, "command") == "" && ruleutil.String(s, "url") == "" {
				rc.Reportf(rc.KeyLine(name), "server %q has neither command nor url", name)
			}
		}
		return nil
	},
}

var (
	secretKeyPattern   = regexp.MustCompile(`(?i)(token|secret|password|passwd|api[_-]?key|auth)`)
	secretValuePattern = regexp.MustCompile(`^(sk-[A-Za-z0-9_-]{16,}|gh[pousr]_[A-Za-z0-9]{20,}|xox[abpr]-[A-Za-z0-9-]{10,}|AKIA[0-9A-Z]{16})`)
	envReference       = regexp.MustCompile(`^\$\{?[A-Za-z_][A-Za-z0-9_]*(:-[^}]*)?\}?$`)
)

// HardcodedSecret flags credentials written directly into env or headers.
var HardcodedSecret = lint.RuleDef{
	ID:          "mcp-hardcoded-secret",
	Name:        "mcp.hardcoded_secret",
	Category:    core.CategoryMCP,
	Description: "Credentials in MCP server env and headers should reference environment variables.",
	Severity:    core.SeverityWarn,
	OptionSchema: `{
		"type": "object",
		"properties": {
			"allow": {"type": "array", "items": {"type": "string"}}
		},
		"additionalProperties": false
	}`,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		allow := lint.GetStringSliceOption(rc.Options, "allow", nil)
		all := servers(rc)
		for _, name := range ruleutil.SortedKeys(all) {
			s := ruleutil.Map(all[name])
			for _, section := range []string{"env", "headers"} {
				values := ruleutil.Map(s[section])
				for _, key := range ruleutil.SortedKeys(values) {
					if slices.Contains(allow, key) {
						continue
					}
					value := ruleutil.String(values, key)
					if !looksSecret(key, value) {
						continue
					}
					rc.Report(core.Issue{
						Line:    rc.KeyLine(key),
						Message: fmt.Sprintf("server %q has a hardcoded value for %s.%s", name, section, key),
						Fix:     fmt.Sprintf("Use \"${%s}\" and set the value in your environment", envName(key)),
					})
				}
			}
		}
		return nil
	},
	Rationale: ".mcp.json is usually committed; secrets in it end up in version control.",
}

func looksSecret(key, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || strings.Contains(value, "${") || envReference.MatchString(value) {
		return false
	}
	if secretValuePattern.MatchString(strings.TrimPrefix(value, "Bearer ")) {
		return true
	}
	return secretKeyPattern.MatchString(key)
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

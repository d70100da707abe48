// Package hooks provides rules for hooks.json files.
package hooks

import (
	"context"
	"fmt"
	"os"
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
		UnknownEvent,
		ScriptMissing,
	}
}

// KnownEvents lists the hook events the assistant emits.
var KnownEvents = []string{
	"PreToolUse",
	"PostToolUse",
	"Notification",
	"UserPromptSubmit",
	"Stop",
	"SubagentStop",
	"PreCompact",
	"SessionStart",
	"SessionEnd",
}

// UnknownEvent flags hook events that are never emitted.
var UnknownEvent = lint.RuleDef{
	ID:          "hooks-unknown-event",
	Name:        "hooks.unknown_event",
	Category:    core.CategoryHooks,
	Description: "Hook event names must be known events.",
	Severity:    core.SeverityError,
	OptionSchema: `{
		"type": "object",
		"properties": {
			"extraEvents": {"type": "array", "items": {"type": "string"}}
		},
		"additionalProperties": false
	}`,
	Check: func(_ context.Context, rc *lint.RuleContext) error {
		extra := lint.GetStringSliceOption(rc.Options, "extraEvents", nil)
		events := ruleutil.Map(ruleutil.Map(rc.Data)["hooks"])
		for _, event := range ruleutil.SortedKeys(events) {
			if slices.Contains(KnownEvents, event) || slices.Contains(extra, event) {
				continue
			}
			issue := core.Issue{
				Line:    rc.KeyLine(event),
				Message: fmt.Sprintf("unknown hook event %q", event),
			}
			if s := suggest(event); s != "" {
				issue.Fix = fmt.Sprintf("Did you mean %q?", s)
			}
			rc.Report(issue)
		}
		return nil
	},
	Rationale: "Hooks registered under a misspelled event are silently never run.",
}

// suggest returns a known event equal to name ignoring case, if any.
func suggest(name string) string {
	for _, e := range KnownEvents {
		if strings.EqualFold(e, name) {
			return e
		}
	}
	return ""
}

// ScriptMissing flags command hooks whose script is a relative path that
// does not exist.
var ScriptMissing = lint.RuleDef{
	ID:          "hooks-script-missing",
	Name:        "hooks.script_missing",
	Category:    core.CategoryHooks,
	Description: "Scripts referenced by command hooks must exist.",
	Severity:    core.SeverityError,
	Check:       checkScripts,
	BadExample:  `{"type": "command", "command": "${CLAUDE_PLUGIN_ROOT}/scripts/missing.sh"}`,
}

const pluginRootVar = "${CLAUDE_PLUGIN_ROOT}"

func checkScripts(ctx context.Context, rc *lint.RuleContext) error {
	// hooks/hooks.json lives one level below the plugin root.
	pluginRoot := filepath.Dir(filepath.Dir(rc.FilePath))
	fileDir := filepath.Dir(rc.FilePath)

	events := ruleutil.Map(ruleutil.Map(rc.Data)["hooks"])
	for _, event := range ruleutil.SortedKeys(events) {
		matchers, _ := events[event].([]any)
		for _, m := range matchers {
			hooks, _ := ruleutil.Map(m)["hooks"].([]any)
			for _, h := range hooks {
				if err := ctx.Err(); err != nil {
					return err
				}
				cmd := ruleutil.String(ruleutil.Map(h), "command")
				script, ok := scriptPath(cmd, pluginRoot, fileDir)
				if !ok {
					continue
				}
				if _, err := os.Stat(script); err != nil {
					rc.Report(core.Issue{
						Line:    rc.LineOf(cmd),
						Message: fmt.Sprintf("%s hook script %q not found", event, firstField(cmd)),
					})
				}
			}
		}
	}
	return nil
}

// scriptPath extracts a checkable script path from a hook command. Only
// plugin-root and ./ relative scripts are checked; anything else may be on PATH.
func scriptPath(cmd, pluginRoot, fileDir string) (string, bool) {
	first := strings.Trim(firstField(cmd), `"'`)
	switch {
	case strings.HasPrefix(first, pluginRootVar+"/"):
		return filepath.Join(pluginRoot, filepath.FromSlash(strings.TrimPrefix(first, pluginRootVar+"/"))), true
	case strings.HasPrefix(first, "./"):
		return filepath.Join(fileDir, filepath.FromSlash(first)), true
	default:
		return "", false
	}
}

func firstField(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

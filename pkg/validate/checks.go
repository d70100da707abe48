package validate

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
)

// ExtraCheck is a validator-specific check that works on the typed
// configuration rather than raw text. It runs after the catalog rules and
// its issues carry their own fixed severity.
type ExtraCheck func(path, content string, data any) []core.Issue

const maxHookTimeoutSeconds = 600

type hookCommand struct {
	Type    string  `mapstructure:"type"`
	Command string  `mapstructure:"command"`
	Prompt  string  `mapstructure:"prompt"`
	Timeout float64 `mapstructure:"timeout"`
}

type hookMatcher struct {
	Matcher string        `mapstructure:"matcher"`
	Hooks   []hookCommand `mapstructure:"hooks"`
}

type hookEvents map[string][]hookMatcher

type hooksDoc struct {
	Hooks hookEvents `mapstructure:"hooks"`
}

type settingsDoc struct {
	Hooks       hookEvents `mapstructure:"hooks"`
	Permissions struct {
		Allow []string `mapstructure:"allow"`
		Deny  []string `mapstructure:"deny"`
	} `mapstructure:"permissions"`
}

type mcpServer struct {
	Type    string `mapstructure:"type"`
	Command string `mapstructure:"command"`
	URL     string `mapstructure:"url"`
}

type mcpDoc struct {
	Servers map[string]mcpServer `mapstructure:"mcpServers"`
}

type lspServer struct {
	Command             string            `mapstructure:"command"`
	ExtensionToLanguage map[string]string `mapstructure:"extensionToLanguage"`
}

func builtinChecks() map[core.Category]ExtraCheck {
	return map[core.Category]ExtraCheck{
		core.CategoryHooks:    checkHooksDoc,
		core.CategorySettings: checkSettingsDoc,
		core.CategoryMCP:      checkMCPDoc,
		core.CategoryLSP:      checkLSPDoc,
	}
}

// decodeInto maps an already schema-valid document onto a typed struct.
func decodeInto(data any, out any) error {
	return mapstructure.Decode(data, out)
}

func decodeError(path string, err error) []core.Issue {
	return []core.Issue{{
		Message:  fmt.Sprintf("error validating file: %v", err),
		File:     path,
		Severity: core.SeverityError,
	}}
}

func checkHooksDoc(path, content string, data any) []core.Issue {
	var doc hooksDoc
	if err := decodeInto(data, &doc); err != nil {
		return decodeError(path, err)
	}
	return checkHookEvents(path, content, doc.Hooks)
}

func checkSettingsDoc(path, content string, data any) []core.Issue {
	var doc settingsDoc
	if err := decodeInto(data, &doc); err != nil {
		return decodeError(path, err)
	}
	issues := checkHookEvents(path, content, doc.Hooks)

	denied := make(map[string]bool, len(doc.Permissions.Deny))
	for _, rule := range doc.Permissions.Deny {
		denied[rule] = true
	}
	for _, rule := range doc.Permissions.Allow {
		if denied[rule] {
			issues = append(issues, core.Issue{
				Message:  fmt.Sprintf("permission %q is both allowed and denied", rule),
				Line:     lint.LineOf(content, `"`+rule+`"`),
				Severity: core.SeverityError,
				Fix:      "Remove the rule from either permissions.allow or permissions.deny",
			})
		}
	}
	return issues
}

func checkHookEvents(path, content string, events hookEvents) []core.Issue {
	var issues []core.Issue

	names := make([]string, 0, len(events))
	for name := range events {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, event := range names {
		line := lint.KeyLine(content, event)
		seen := make(map[string]bool)
		for _, m := range events[event] {
			if seen[m.Matcher] {
				issues = append(issues, core.Issue{
					Message:  fmt.Sprintf("event %q has more than one entry for matcher %q", event, m.Matcher),
					File:     path,
					Line:     line,
					Severity: core.SeverityWarn,
					Fix:      "Merge the hooks into a single matcher entry",
				})
			}
			seen[m.Matcher] = true

			for _, h := range m.Hooks {
				switch {
				case h.Type == "command" && h.Command == "":
					issues = append(issues, core.Issue{
						Message:  fmt.Sprintf("%s hook has type command but no command", event),
						File:     path,
						Line:     line,
						Severity: core.SeverityError,
					})
				case h.Type == "prompt" && h.Prompt == "":
					issues = append(issues, core.Issue{
						Message:  fmt.Sprintf("%s hook has type prompt but no prompt", event),
						File:     path,
						Line:     line,
						Severity: core.SeverityError,
					})
				}
				if h.Timeout > maxHookTimeoutSeconds {
					issues = append(issues, core.Issue{
						Message:  fmt.Sprintf("%s hook timeout %gs exceeds %ds", event, h.Timeout, maxHookTimeoutSeconds),
						File:     path,
						Line:     lint.LineOf(content, `"timeout"`),
						Severity: core.SeverityWarn,
					})
				}
			}
		}
	}
	return issues
}

func checkMCPDoc(path, content string, data any) []core.Issue {
	var doc mcpDoc
	if err := decodeInto(data, &doc); err != nil {
		return decodeError(path, err)
	}

	names := make([]string, 0, len(doc.Servers))
	for name := range doc.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	var issues []core.Issue
	for _, name := range names {
		s := doc.Servers[name]
		line := lint.KeyLine(content, name)
		switch {
		case s.Command != "" && s.URL != "":
			issues = append(issues, core.Issue{
				Message:  fmt.Sprintf("server %q declares both command and url", name),
				File:     path,
				Line:     line,
				Severity: core.SeverityError,
				Fix:      "Use command for stdio servers and url for sse/http servers",
			})
		case (s.Type == "sse" || s.Type == "http") && s.URL == "":
			issues = append(issues, core.Issue{
				Message:  fmt.Sprintf("server %q has type %s but no url", name, s.Type),
				File:     path,
				Line:     line,
				Severity: core.SeverityError,
			})
		case s.Type == "stdio" && s.URL != "":
			issues = append(issues, core.Issue{
				Message:  fmt.Sprintf("server %q has type stdio but sets url", name),
				File:     path,
				Line:     line,
				Severity: core.SeverityError,
			})
		}
	}
	return issues
}

func checkLSPDoc(path, content string, data any) []core.Issue {
	var servers map[string]lspServer
	if err := decodeInto(data, &servers); err != nil {
		return decodeError(path, err)
	}

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	var issues []core.Issue
	for _, name := range names {
		if len(servers[name].ExtensionToLanguage) == 0 {
			issues = append(issues, core.Issue{
				Message:  fmt.Sprintf("server %q maps no file extensions and will never start", name),
				File:     path,
				Line:     lint.KeyLine(content, name),
				Severity: core.SeverityWarn,
			})
		}
	}
	return issues
}

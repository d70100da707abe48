// Package ruleutil holds small helpers shared by the built-in rule packages.
package ruleutil

import (
	"regexp"
	"sort"
	"strings"
)

// KebabCase matches lowercase names like "code-reviewer".
var KebabCase = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Semver matches semantic versions like 1.2.3, 1.0.0-rc.1 or 2.0.0+build.5.
var Semver = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?(\+[a-zA-Z0-9.]+)?$`)

// ToolPattern matches a tool permission entry: a tool name, optionally with a
// parenthesised specifier, e.g. "Bash(git diff:*)", "Read" or "mcp__github__list_issues".
var ToolPattern = regexp.MustCompile(`^(mcp__[A-Za-z0-9_-]+(__[A-Za-z0-9_*-]+)?|[A-Z][A-Za-z0-9]*)(\(.+\))?$`)

// XMLTag matches anything that looks like an opening XML/HTML tag.
var XMLTag = regexp.MustCompile(`<[a-zA-Z][^>]*>`)

// Map returns v as a JSON object, or nil.
func Map(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// String returns m[key] as a string, or "".
func String(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Strings returns the string elements of a JSON array value. A single string
// is returned as a one-element list; comma-separated lists are split.
func Strings(v any) []string {
	switch t := v.(type) {
	case string:
		return splitTopLevel(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	default:
		return nil
	}
}

// splitTopLevel splits on commas outside parentheses, so
// "Bash(git add:*), Read" yields two entries.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	flush := func(end int) {
		if p := strings.TrimSpace(s[start:end]); p != "" {
			out = append(out, p)
		}
	}
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(s))
	return out
}

// SortedKeys returns the keys of m in order, so findings are reported
// deterministically.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

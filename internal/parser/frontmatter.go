// Package parser provides YAML frontmatter parsing for markdown configuration
// files (skills, agents, commands, output styles and CLAUDE.md).
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FrontmatterResult holds the result of frontmatter extraction.
type FrontmatterResult struct {
	Data     map[string]any // parsed frontmatter, empty when absent
	Body     string         // markdown after the frontmatter block
	BodyLine int            // 1-based line the body starts on
	HasYAML  bool           // whether a frontmatter block was found
}

// frontmatterPattern matches a leading "---" fenced block. A UTF-8 byte order
// mark before the opening fence is tolerated.
var frontmatterPattern = regexp.MustCompile(`(?s)\A(?:\x{FEFF})?---[ \t]*\r?\n(?:(.*?)\r?\n)?---[ \t]*(?:\r?\n|\z)`)

// yamlLinePattern finds the line number in yaml.v3 error messages.
var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// ExtractFrontmatter splits markdown content into its frontmatter map and body.
// Content without a frontmatter block is returned whole as the body.
func ExtractFrontmatter(content string) (*FrontmatterResult, error) {
	result := &FrontmatterResult{
		Data:     map[string]any{},
		Body:     content,
		BodyLine: 1,
	}

	loc := frontmatterPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return result, nil
	}

	result.HasYAML = true
	yamlContent := ""
	if loc[2] >= 0 {
		yamlContent = content[loc[2]:loc[3]]
	}
	result.Body = content[loc[1]:]
	result.BodyLine = strings.Count(content[:loc[1]], "\n") + 1
	if !strings.HasSuffix(content[:loc[1]], "\n") {
		// Closing fence at end of input with no trailing newline.
		result.BodyLine++
	}

	data, err := parseFrontmatterYAML(yamlContent)
	if err != nil {
		return nil, err
	}
	result.Data = data
	return result, nil
}

// parseFrontmatterYAML decodes the block into a map. The block must be a
// mapping; an empty block yields an empty map.
func parseFrontmatterYAML(yamlContent string) (map[string]any, error) {
	if strings.TrimSpace(yamlContent) == "" {
		return map[string]any{}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(yamlContent), &node); err != nil {
		return nil, &FrontmatterParseError{
			Line:    yamlErrorLine(err),
			Message: fmt.Sprintf("invalid YAML: %s", strings.TrimPrefix(err.Error(), "yaml: ")),
		}
	}
	if len(node.Content) == 0 {
		return map[string]any{}, nil
	}
	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &FrontmatterParseError{
			Line:    root.Line + 1,
			Message: "frontmatter must be a mapping of keys to values",
		}
	}

	var data map[string]any
	if err := root.Decode(&data); err != nil {
		return nil, &FrontmatterParseError{
			Line:    yamlErrorLine(err),
			Message: fmt.Sprintf("failed to parse frontmatter: %v", err),
		}
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// yamlErrorLine converts a yaml.v3 error line (relative to the block) into a
// file line, accounting for the opening fence. Returns 0 if unknown.
func yamlErrorLine(err error) int {
	m := yamlLinePattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0
	}
	return n + 1
}

// FrontmatterParseError represents a frontmatter parsing error.
type FrontmatterParseError struct {
	File    string
	Line    int
	Message string
}

func (e *FrontmatterParseError) Error() string {
	if e.File != "" {
		if e.Line > 0 {
			return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// StringField returns a string frontmatter value, or "" when missing or not a string.
func StringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

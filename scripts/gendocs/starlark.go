package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/claudelint/internal/cli/config"
	"github.com/leapstack-labs/claudelint/pkg/core"
)

// generateStarlarkDocs generates the custom rule reference.
func generateStarlarkDocs(outDir string) error {
	log.Printf("Generating custom rule docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Read existing page and replace or append the generated reference
	pagePath := filepath.Clean(filepath.Join(outDir, "index.md"))

	existingContent, err := os.ReadFile(pagePath) //#nosec G304 -- path is built from the output directory
	if err != nil {
		// File doesn't exist, generate full file
		return generateFullStarlarkDoc(pagePath)
	}

	return updateStarlarkDoc(pagePath, string(existingContent))
}

// APIField is one key of the rule dict or one member of the check context.
type APIField struct {
	Name        string
	Type        string
	Description string
}

// getRuleDictSchema returns the keys of the rule dict a rule file defines.
// Based on internal/starlark/loader.go.
func getRuleDictSchema() []APIField {
	var cats []string
	for _, c := range core.Categories() {
		cats = append(cats, InlineCode(string(c)))
	}
	return []APIField{
		{Name: "id", Type: "string", Description: "Rule id, unique across built-in and custom rules (required)"},
		{Name: "category", Type: "string", Description: "File category the rule checks, one of " + strings.Join(cats, ", ") + " (required)"},
		{Name: "severity", Type: "string", Description: "Default severity: off, warn or error (default warn)"},
		{Name: "name", Type: "string", Description: "Display name (default: the id)"},
		{Name: "description", Type: "string", Description: "One-line summary shown by `claudelint rules`"},
		{Name: "rationale", Type: "string", Description: "Why the rule exists"},
		{Name: "fix", Type: "string", Description: "How to fix a finding"},
		{Name: "options_schema", Type: "dict or string", Description: "JSON Schema for the rule's options"},
		{Name: "default_options", Type: "dict", Description: "Options used when the configuration gives none"},
	}
}

// getContextSchema returns the members of the ctx value passed to check.
// Based on internal/starlark/context.go.
func getContextSchema() []APIField {
	return []APIField{
		{Name: "ctx.file_path", Type: "string", Description: "Absolute path of the file"},
		{Name: "ctx.category", Type: "string", Description: "Category of the file"},
		{Name: "ctx.content", Type: "string", Description: "Raw file content"},
		{Name: "ctx.data", Type: "dict", Description: "Parsed JSON document, or the frontmatter of a markdown file"},
		{Name: "ctx.body", Type: "string", Description: "Markdown body after the frontmatter"},
		{Name: "ctx.body_line", Type: "int", Description: "Line on which the body starts"},
		{Name: "ctx.options", Type: "dict", Description: "Resolved options for this file"},
		{Name: "ctx.report(message, line=0, fix=\"\")", Type: "function", Description: "Report a finding"},
		{Name: "ctx.line_of(needle)", Type: "function", Description: "First line containing needle, or 0"},
		{Name: "ctx.key_line(key)", Type: "function", Description: "Line on which a JSON or frontmatter key appears, or 0"},
	}
}

func apiTable(w *MarkdownWriter, fields []APIField) {
	var rows [][]string
	for _, f := range fields {
		rows = append(rows, []string{InlineCode(f.Name), f.Type, f.Description})
	}
	w.Table([]string{"Name", "Type", "Description"}, rows)
}

// generateStarlarkReferenceSection generates the reference section markdown.
func generateStarlarkReferenceSection() string {
	w := NewMarkdownWriter()

	w.Header(2, "Reference")
	w.GeneratedMarker()

	w.Header(3, InlineCode("rule"))
	w.Paragraph("Each rule file assigns a dict to the global `rule`:")
	apiTable(w, getRuleDictSchema())

	w.Header(3, InlineCode("check(ctx)"))
	w.Paragraph("The file also defines `check`, called once per file of the rule's category with the rule enabled:")
	apiTable(w, getContextSchema())

	w.Header(3, "Built-in Modules")
	w.Table([]string{"Name", "Description"}, [][]string{
		{InlineCode("json"), "encode, decode and indent"},
		{InlineCode("struct"), "Build immutable records"},
	})

	w.Header(3, "Limits")
	w.Paragraph(fmt.Sprintf("Each call to `check` may run at most %d Starlark steps (%s). A rule that fails or runs out of steps is reported as one error on the file; other rules still run.",
		config.DefaultMaxSteps, InlineCode("customRuleMaxSteps")))

	return w.String()
}

// generateFullStarlarkDoc generates a complete custom rules page.
func generateFullStarlarkDoc(path string) error {
	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter("Custom Rules", "Writing claudelint rules in Starlark")
	w.GeneratedMarker()

	// Title and intro
	w.Header(1, "Custom Rules")
	w.Paragraph("Custom rules are Starlark files listed under `customRules` in `.claudelint.yaml`. A directory entry loads every `.star` file in it.")

	w.Header(2, "Example")
	w.CodeBlock("python", `rule = {
    "id": "team-skill-owner",
    "category": "Skills",
    "severity": "error",
    "description": "Skills must name an owner.",
    "options_schema": {
        "type": "object",
        "properties": {"field": {"type": "string"}},
    },
    "default_options": {"field": "owner"},
}

def check(ctx):
    field = ctx.options["field"]
    if field not in ctx.data:
        ctx.report("skill has no " + field, line = ctx.key_line("name"))`)

	// Reference section
	w.Text(generateStarlarkReferenceSection())

	return os.WriteFile(path, w.Bytes(), 0600)
}

// updateStarlarkDoc updates the generated section in an existing file.
func updateStarlarkDoc(path, content string) error {
	// Find the start of the generated section
	markerIdx := strings.Index(content, "## Reference")
	if markerIdx == -1 {
		// No Reference section, append
		return appendStarlarkDoc(path, content)
	}

	// Keep everything before Reference section and append new generated content
	newContent := strings.TrimSpace(content[:markerIdx]) + "\n\n" + generateStarlarkReferenceSection()

	return os.WriteFile(path, []byte(newContent), 0600)
}

// appendStarlarkDoc appends the generated reference section to an existing file.
func appendStarlarkDoc(path, content string) error {
	newContent := strings.TrimSpace(content) + "\n\n" + generateStarlarkReferenceSection()
	return os.WriteFile(path, []byte(newContent), 0600)
}

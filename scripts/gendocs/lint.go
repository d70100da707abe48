package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/lint/rules"
)

// categoryDescriptions provides human-readable descriptions for rule categories.
var categoryDescriptions = map[core.Category]string{
	core.CategoryClaudeMD:     "Rules for CLAUDE.md and CLAUDE.local.md memory files.",
	core.CategorySkills:       "Rules for SKILL.md files under .claude/skills.",
	core.CategorySettings:     "Rules for .claude/settings.json permissions and options.",
	core.CategoryHooks:        "Rules for hook definitions in hooks.json and settings.",
	core.CategoryMCP:          "Rules for MCP server definitions in .mcp.json.",
	core.CategoryPlugin:       "Rules for .claude-plugin/plugin.json manifests.",
	core.CategoryAgents:       "Rules for subagent definitions.",
	core.CategoryLSP:          "Rules for LSP server definitions in .lsp.json.",
	core.CategoryOutputStyles: "Rules for output style files.",
	core.CategoryCommands:     "Rules for slash command files.",
}

// generateRuleDocs generates the rule index and one page per rule. Page
// names match the URLs built by lint.BuildDocURL.
func generateRuleDocs(outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	catalog, err := rules.NewCatalog()
	if err != nil {
		return fmt.Errorf("failed to build rule catalog: %w", err)
	}

	if err := generateRulesIndex(outDir, catalog); err != nil {
		return err
	}
	log.Printf("  Generated index.md")

	for _, def := range catalog.All() {
		info := def.Info()
		if err := generateRulePage(outDir, info); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", info.ID, err)
		}
	}
	log.Printf("  Generated %d rule pages", catalog.Count())

	return nil
}

// ruleFileName returns the page name of a rule.
func ruleFileName(id string) string {
	return strings.ToLower(id) + ".md"
}

// generateRulesIndex generates the rules overview page.
func generateRulesIndex(outDir string, catalog *lint.Catalog) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Rules", "Lint rules for Claude project configuration")
	w.GeneratedMarker()

	w.Header(1, "Rules")
	w.Paragraph(fmt.Sprintf("claudelint ships **%d rules** across %d file categories.", catalog.Count(), len(core.Categories())))

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Description"},
		[][]string{
			{InlineCode("error"), "Fails the run"},
			{InlineCode("warn"), "Reported; fails the run unless below maxWarnings"},
			{InlineCode("off"), "Not checked"},
		},
	)

	w.Header(2, "Configuration")
	w.Paragraph("Rules are configured in `.claudelint.yaml`. The last matching override wins:")
	w.CodeBlock("yaml", `rules:
  claude-md-empty: off          # disable rule
  claude-md-size:
    severity: error             # override severity
    options:
      maxLines: 300             # rule-specific option

overrides:
  - files: ["vendor/**"]
    rules:
      claude-md-size: warn`)

	for _, cat := range core.Categories() {
		defs := catalog.ByCategory(cat)
		if len(defs) == 0 {
			continue
		}

		// Write category header with anchor
		w.Line(fmt.Sprintf("## %s {#%s}", cat, cat.ValidatorID()))
		w.Newline()
		if desc, ok := categoryDescriptions[cat]; ok {
			w.Paragraph(desc)
		}

		var rows [][]string
		for _, def := range defs {
			info := def.Info()
			id := fmt.Sprintf("[%s](/rules/%s)", InlineCode(info.ID), strings.ToLower(info.ID))
			if info.Deprecated {
				id += " (deprecated)"
			}
			rows = append(rows, []string{id, InlineCode(info.DefaultSeverity.String()), cleanDescription(info.Description)})
		}
		w.Table([]string{"Rule", "Default", "Description"}, rows)
	}

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// generateRulePage generates the page of a single rule.
func generateRulePage(outDir string, info core.RuleInfo) error {
	w := NewMarkdownWriter()

	w.Frontmatter(info.ID, cleanDescription(info.Description))
	w.GeneratedMarker()
	writeRuleDoc(w, info)

	return os.WriteFile(filepath.Join(outDir, ruleFileName(info.ID)), w.Bytes(), 0600)
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, info core.RuleInfo) {
	w.Header(1, info.ID)

	// Severity badge and description
	w.Line(fmt.Sprintf("**Category:** %s | **Severity:** %s | **Fixable:** %t",
		info.Category, InlineCode(info.DefaultSeverity.String()), info.Fixable))
	w.Newline()

	if info.Deprecated {
		note := "> **Deprecated.**"
		if len(info.ReplacedBy) > 0 {
			var links []string
			for _, id := range info.ReplacedBy {
				links = append(links, fmt.Sprintf("[%s](/rules/%s)", InlineCode(id), strings.ToLower(id)))
			}
			note += " Use " + strings.Join(links, ", ") + " instead."
		}
		w.Paragraph(note)
	}

	w.Paragraph(cleanDescription(info.Description))

	lang := "json"
	if info.Category.IsMarkdown() {
		lang = "markdown"
	}

	if info.Rationale != "" {
		w.Header(2, "Why This Matters")
		w.Paragraph(info.Rationale)
	}
	if info.BadExample != "" {
		w.Header(2, "Bad")
		w.CodeBlock(lang, info.BadExample)
	}
	if info.GoodExample != "" {
		w.Header(2, "Good")
		w.CodeBlock(lang, info.GoodExample)
	}
	if info.Fix != "" {
		w.Header(2, "How to Fix")
		w.Paragraph(info.Fix)
	}

	if len(info.ConfigKeys) > 0 {
		w.Header(2, "Configuration")
		w.Paragraph(fmt.Sprintf("This rule accepts the following options: %s",
			InlineCode(strings.Join(info.ConfigKeys, ", "))))
		w.CodeBlock("yaml", fmt.Sprintf("rules:\n  %s:\n    severity: %s\n    options:\n      %s: ...",
			info.ID, info.DefaultSeverity, info.ConfigKeys[0]))
	}
}

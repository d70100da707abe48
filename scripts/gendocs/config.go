package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/claudelint/internal/cli/config"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/report"
)

// generateConfigDocs generates the configuration reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate index.md: %w", err)
	}
	log.Printf("  Generated index.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Flag        string
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/cli/config/types.go Config.
func getConfigSchema() []ConfigField {
	formats := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		formats = append(formats, string(f))
	}

	return []ConfigField{
		{Name: "rules", Type: "map", Description: "Rule id to severity, or to {severity, options}"},
		{Name: "overrides", Type: "list", Description: "Per-path rule settings: [{files: [glob], rules: {...}}]"},
		{Name: "output.format", Type: "string", Default: config.DefaultFormat, Flag: "--format", Description: "Report format: " + strings.Join(formats, ", ")},
		{Name: "output.verbose", Type: "bool", Default: "false", Flag: "--verbose", Description: "Show explanations and fixes"},
		{Name: "output.color", Type: "string", Default: config.DefaultColor, Flag: "--color", Description: "Color output: " + strings.Join(config.ColorModes, ", ")},
		{Name: "output.docsURL", Type: "string", Default: lint.DefaultDocsBaseURL, Description: "Base of the rule documentation links, for a self-hosted copy of the docs"},
		{Name: "maxWarnings", Type: "int", Default: strconv.Itoa(config.DefaultMaxWarnings), Flag: "--max-warnings", Description: "Warning count at which a warning-only run fails; -1 means any warning fails"},
		{Name: "warningsAsErrors", Type: "bool", Default: "false", Flag: "--warnings-as-errors", Description: "Fail on any warning when maxWarnings is unset"},
		{Name: "ignorePatterns", Type: "list", Flag: "--ignore-pattern", Description: "Globs of paths to skip during discovery"},
		{Name: "customRules", Type: "list", Flag: "--rules-dir", Description: "Starlark rule files or directories, relative to the config file"},
		{Name: "customRuleMaxSteps", Type: "int", Default: strconv.FormatUint(config.DefaultMaxSteps, 10), Flag: "--max-steps", Description: "Execution step limit for each custom rule check"},
		{Name: "onInvalidOptions", Type: "string", Default: config.DefaultOnInvalidOptions, Flag: "--on-invalid-options", Description: "Rules whose options fail their schema: defaults (run with default options) or disable"},
		{Name: "concurrency", Type: "int", Default: "0", Flag: "--concurrency", Description: "Files validated in parallel; 0 means one per CPU"},
		{Name: "log.level", Type: "string", Default: config.DefaultLogLevel, Flag: "--log-level", Description: "Log level: debug, info, warn, error"},
		{Name: "log.format", Type: "string", Default: config.DefaultLogFormat, Flag: "--log-format", Description: "Log format: text, json"},
	}
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter("Configuration", "claudelint configuration reference")
	w.GeneratedMarker()

	// Title and intro
	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("claudelint reads %s from the working directory or the nearest parent directory. Pass %s to use another file.",
		strings.Join(inlineAll(config.FileNames), " or "), InlineCode("--config")))

	w.Header(2, "Settings")
	headers := []string{"Field", "Type", "Default", "Flag", "Description"}
	var rows [][]string
	for _, f := range getConfigSchema() {
		defVal := "-"
		if f.Default != "" {
			defVal = InlineCode(f.Default)
		}
		flag := "-"
		if f.Flag != "" {
			flag = InlineCode(f.Flag)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, flag, f.Description})
	}
	w.Table(headers, rows)

	w.Header(2, "Rule Entries")
	w.Paragraph("A rule entry is a severity, an object with a severity and options, or a [severity, options] list. Severities are `off`, `warn` and `error`, or `0`, `1` and `2`.")
	w.CodeBlock("yaml", `rules:
  claude-md-empty: off
  skill-description-length: 2
  claude-md-size:
    severity: warn
    options:
      maxLines: 300`)

	w.Header(2, "Overrides")
	w.Paragraph("Overrides apply rule settings to matching paths, relative to the config file. Later overrides win over earlier ones. A pattern without a slash also matches file base names.")
	w.CodeBlock("yaml", `overrides:
  - files: ["vendor/**", "*.local.json"]
    rules:
      settings-permission-duplicate: off`)

	w.Header(2, "Precedence")
	w.BulletList([]string{
		"Command-line flags",
		fmt.Sprintf("Environment variables (%s)", InlineCode(config.EnvPrefix+"*")),
		fmt.Sprintf("A %s file next to the config file", InlineCode(".env")),
		"The config file",
		"Built-in defaults",
	})

	// Full example
	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# .claudelint.yaml
rules:
  claude-md-size:
    severity: error
    options:
      maxLines: 400
  skill-description-length: off

overrides:
  - files: ["examples/**"]
    rules:
      plugin-name-format: warn

output:
  format: stylish
  verbose: false
  color: auto

maxWarnings: 10
ignorePatterns: ["fixtures/**"]
customRules: ["lint-rules"]
onInvalidOptions: defaults`)

	// Write file
	filename := filepath.Join(outDir, "index.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}

func inlineAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = InlineCode(s)
	}
	return out
}

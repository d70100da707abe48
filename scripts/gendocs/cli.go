package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/claudelint/internal/cli"
	"github.com/leapstack-labs/claudelint/internal/cli/commands"
	"github.com/leapstack-labs/claudelint/internal/cli/config"
	"github.com/leapstack-labs/claudelint/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// generateCLIDocs writes an index page plus one page per command,
// subcommands included.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rootCmd := cli.NewRootCmd()
	cmds := documentedCommands(rootCmd)

	if err := generateCLIIndex(rootCmd, cmds, outDir); err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}
	log.Printf("  Generated index.md")

	for _, cmd := range cmds {
		name := commandPageName(cmd)
		if err := generateCommandPage(cmd, outDir); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", cmd.CommandPath(), err)
		}
		log.Printf("  Generated %s.md", name)
	}
	return nil
}

// documentedCommands walks the tree below root in declaration order.
func documentedCommands(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || strings.HasPrefix(cmd.Name(), "__") {
			continue
		}
		out = append(out, cmd)
		out = append(out, documentedCommands(cmd)...)
	}
	return out
}

// commandPageName is the command path without the binary, dash-joined:
// "rules show" becomes "rules-show".
func commandPageName(cmd *cobra.Command) string {
	parts := strings.Fields(cmd.CommandPath())
	return strings.Join(parts[1:], "-")
}

func generateCLIIndex(rootCmd *cobra.Command, cmds []*cobra.Command, outDir string) error {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for claudelint")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(cleanDescription(rootCmd.Long))

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/claudelint/cmd/claudelint@latest")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range cmds {
		path := strings.TrimPrefix(cmd.CommandPath(), rootCmd.Name()+" ")
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(path), commandPageName(cmd))
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	writeFlagsTable(w, rootCmd, rootCmd.PersistentFlags())

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every setting can come from an environment variable prefixed with %s, or from a %s file in the project root. Lists are comma-separated. Flags win over the environment, and the environment wins over the config file.",
		InlineCode(config.EnvPrefix), InlineCode(".env")))
	vars := config.EnvVars()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	var envRows [][]string
	for _, name := range names {
		envRows = append(envRows, []string{InlineCode(name), InlineCode(vars[name])})
	}
	w.Table([]string{"Variable", "Setting"}, envRows)

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode(fmt.Sprint(report.ExitOK)), "No problems, or only warnings below the threshold"},
		{InlineCode(fmt.Sprint(report.ExitFailure)), "Lint errors, or too many warnings"},
		{InlineCode(fmt.Sprint(report.ExitFatal)), "Broken configuration or custom rule, reported on stderr"},
	})

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// generateCommandPage generates documentation for a single command.
func generateCommandPage(cmd *cobra.Command, outDir string) error {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.CommandPath(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.CommandPath())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	if cmd.Runnable() {
		w.CodeBlock("bash", cmd.UseLine())
	} else {
		w.CodeBlock("bash", cmd.CommandPath()+" <subcommand>")
	}

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		w.BulletList(inlineAll(cmd.Aliases))
	}

	if cmd.HasAvailableSubCommands() {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range cmd.Commands() {
			if !sub.IsAvailableCommand() {
				continue
			}
			link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(sub.Name()), commandPageName(sub))
			rows = append(rows, []string{link, cleanDescription(sub.Short)})
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd, cmd.LocalFlags())
	}
	if cmd.HasAvailableInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd, cmd.InheritedFlags())
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	return os.WriteFile(filepath.Join(outDir, commandPageName(cmd)+".md"), w.Bytes(), 0600)
}

// flagSetting returns the config key a flag of cmd sets, or "" when the
// flag is not configuration. Root persistent flags always are; local flags
// only on commands carrying commands.ConfigFlagsAnnotation.
func flagSetting(cmd *cobra.Command, f *pflag.Flag) string {
	key, ok := config.FlagKey(f.Name)
	if !ok {
		return ""
	}
	if cmd.Root().PersistentFlags().Lookup(f.Name) == f {
		return key
	}
	if cmd.Annotations[commands.ConfigFlagsAnnotation] == "true" && cmd.LocalFlags().Lookup(f.Name) != nil {
		return key
	}
	return ""
}

// writeFlagsTable writes the flags of cmd found in flags.
func writeFlagsTable(w *MarkdownWriter, cmd *cobra.Command, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		option := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			option = InlineCode("-"+f.Shorthand) + ", " + option
		}
		def := ""
		if f.DefValue != "" && f.DefValue != "[]" {
			def = InlineCode(f.DefValue)
		}
		setting := flagSetting(cmd, f)
		if setting != "" {
			setting = InlineCode(setting)
		}
		rows = append(rows, []string{option, def, setting, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Default", "Setting", "Description"}, rows)
}

// dedent strips the indentation shared by all non-blank lines.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	indent := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		if n := len(line) - len(trimmed); indent == -1 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		if len(line) >= indent && indent > 0 {
			lines[i] = line[indent:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

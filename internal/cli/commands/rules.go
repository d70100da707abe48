package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/claudelint/internal/cli/output"
	"github.com/leapstack-labs/claudelint/pkg/core"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Category string // Filter by category
	Format   string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available lint rules",
		Long: `List the built-in rules and any custom rules configured in
.claudelint.yaml, grouped by category.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all rules
  claudelint rules

  # Only skills rules, with descriptions
  claudelint rules --category skills --verbose

  # Full documentation for one rule
  claudelint rules show claude-md-size

  # Output as JSON
  claudelint rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "Filter by category (e.g. skills, mcp)")

	_ = cmd.RegisterFlagCompletionFunc("category", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var ids []string
		for _, c := range core.Categories() {
			ids = append(ids, c.ValidatorID())
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <rule-id>",
		Short: "Show the full documentation of a rule",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			cmdCtx := NewCommandContext(cmd)
			catalog, err := NewCatalog(cmdCtx.Cfg, cmdCtx.Logger)
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			var ids []string
			for _, def := range catalog.All() {
				ids = append(ids, def.ID)
			}
			return ids, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRule(cmd, args[0], opts)
		},
	})

	return cmd
}

// rulesRenderer returns the command renderer, switched to --format when set.
func rulesRenderer(cmd *cobra.Command, cmdCtx *CommandContext, format string) *output.Renderer {
	if format == "" {
		return cmdCtx.Renderer
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format)).
		WithColor(output.ParseColor(cmdCtx.Cfg.Output.Color))
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := rulesRenderer(cmd, cmdCtx, opts.Format)

	catalog, err := NewCatalog(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}

	rules, err := filterRules(catalog, opts.Category)
	if err != nil {
		return err
	}

	verbose := cmdCtx.Cfg.Output.Verbose
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listRulesJSON(r, rules)
	case output.ModeMarkdown:
		return listRulesMarkdown(r, rules, verbose)
	default:
		return listRulesText(r, rules, verbose)
	}
}

// filterRules returns the catalog's rules in category order, optionally
// restricted to one category.
func filterRules(catalog *lint.Catalog, category string) ([]core.RuleInfo, error) {
	if category == "" {
		var all []core.RuleInfo
		for _, cat := range core.Categories() {
			for _, def := range catalog.ByCategory(cat) {
				all = append(all, def.Info())
			}
		}
		return all, nil
	}

	cat, ok := core.ParseCategory(category)
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	var rules []core.RuleInfo
	for _, def := range catalog.ByCategory(cat) {
		rules = append(rules, def.Info())
	}
	return rules, nil
}

// groupByCategory splits rules (already in category order) into runs.
func groupByCategory(rules []core.RuleInfo) [][]core.RuleInfo {
	var groups [][]core.RuleInfo
	for i, rule := range rules {
		if i == 0 || rule.Category != rules[i-1].Category {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], rule)
	}
	return groups
}

// newRulesTable builds the rule table. With styles set, severities are
// colored.
func newRulesTable(rules []core.RuleInfo, verbose bool, styles *output.Styles) table.Writer {
	titleCaser := cases.Title(language.English)

	t := table.NewWriter()
	header := table.Row{"Rule", "Severity", "Fixable", "Options"}
	if verbose {
		header = append(header, "Description")
	}
	t.AppendHeader(header)
	for _, rule := range rules {
		fixable := ""
		if rule.Fixable {
			fixable = "yes"
		}
		id := rule.ID
		if rule.Deprecated {
			id += " (deprecated)"
		}
		sev := titleCaser.String(rule.DefaultSeverity.String())
		if styles != nil {
			sev = severityStyle(styles, rule.DefaultSeverity).Render(sev)
		}
		row := table.Row{id, sev, fixable, strings.Join(rule.ConfigKeys, ", ")}
		if verbose {
			row = append(row, rule.Description)
		}
		t.AppendRow(row)
	}
	return t
}

// listRulesText outputs rules as one styled table per category.
func listRulesText(r *output.Renderer, rules []core.RuleInfo, verbose bool) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Lint Rules (%d)", len(rules))))
	r.Println("")

	for _, group := range groupByCategory(rules) {
		r.Println(styles.Header2.Render(string(group[0].Category)))

		t := newRulesTable(group, verbose, styles)
		t.SetStyle(table.StyleLight)
		r.Println(t.Render())
		r.Println("")
	}

	r.Println(styles.Muted.Render("Use 'claudelint rules show <rule-id>' for detailed documentation"))
	r.Println("")
	return nil
}

// listRulesMarkdown outputs rules as markdown tables.
func listRulesMarkdown(r *output.Renderer, rules []core.RuleInfo, verbose bool) error {
	r.Println(output.FormatHeader(1, "Lint Rules"))
	r.Println("")

	for _, group := range groupByCategory(rules) {
		r.Println(output.FormatHeader(2, string(group[0].Category)))
		r.Println("")
		r.Println(newRulesTable(group, verbose, nil).RenderMarkdown())
		r.Println("")
	}
	return nil
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []core.RuleInfo `json:"rules"`
	Count struct {
		ByCategory map[string]int `json:"by_category"`
		Total      int            `json:"total"`
	} `json:"count"`
}

// listRulesJSON outputs rules in JSON format.
func listRulesJSON(r *output.Renderer, rules []core.RuleInfo) error {
	out := RulesJSONOutput{Rules: rules}
	if out.Rules == nil {
		out.Rules = []core.RuleInfo{}
	}
	out.Count.ByCategory = make(map[string]int)
	for _, rule := range rules {
		out.Count.ByCategory[rule.Category.ValidatorID()]++
	}
	out.Count.Total = len(rules)
	return r.JSON(out)
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := rulesRenderer(cmd, cmdCtx, opts.Format)

	catalog, err := NewCatalog(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	rule, ok := catalog.Get(ruleID)
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(rule)
	}
	return r.Markdown(ruleMarkdown(rule))
}

// ruleMarkdown renders the full documentation of a rule.
func ruleMarkdown(rule core.RuleInfo) string {
	titleCaser := cases.Title(language.English)
	lang := "json"
	if rule.Category.IsMarkdown() {
		lang = "markdown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", output.FormatHeader(1, rule.ID))
	fmt.Fprintf(&b, "**Category:** %s | **Severity:** `%s` | **Fixable:** %t\n\n",
		rule.Category, titleCaser.String(rule.DefaultSeverity.String()), rule.Fixable)
	if rule.Deprecated {
		b.WriteString("> Deprecated.")
		if len(rule.ReplacedBy) > 0 {
			fmt.Fprintf(&b, " Use `%s` instead.", strings.Join(rule.ReplacedBy, "`, `"))
		}
		b.WriteString("\n\n")
	}
	b.WriteString(rule.Description + "\n\n")

	section := func(title, body string) {
		if body != "" {
			fmt.Fprintf(&b, "%s\n\n%s\n\n", output.FormatHeader(2, title), body)
		}
	}
	section("Why This Matters", rule.Rationale)
	if rule.BadExample != "" {
		section("Bad Example", output.FormatCodeBlock(lang, rule.BadExample))
	}
	if rule.GoodExample != "" {
		section("Good Example", output.FormatCodeBlock(lang, rule.GoodExample))
	}
	section("How to Fix", rule.Fix)
	if len(rule.ConfigKeys) > 0 {
		section("Configuration", "Options: `"+strings.Join(rule.ConfigKeys, "`, `")+"`")
	}
	if rule.Source != "builtin" {
		section("Source", rule.Source)
	} else {
		section("Documentation", lint.BuildDocURL(rule.ID))
	}
	return b.String()
}

// severityStyle picks the style used for a severity label.
func severityStyle(styles *output.Styles, sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return styles.Error
	case core.SeverityWarn:
		return styles.Warning
	default:
		return styles.Muted
	}
}

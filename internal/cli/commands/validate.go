package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/leapstack-labs/claudelint/internal/cli/config"
	"github.com/leapstack-labs/claudelint/internal/cli/output"
	"github.com/leapstack-labs/claudelint/pkg/diagnostics"
	"github.com/leapstack-labs/claudelint/pkg/report"
	"github.com/spf13/cobra"
)

// ConfigFlagsAnnotation marks commands whose local flags are configuration
// keys. Other commands only contribute the global flags to configuration.
const ConfigFlagsAnnotation = "claudelint/config-flags"

// ValidateOptions holds the options of the validate command that are not
// configuration.
type ValidateOptions struct {
	Paths []string
	Watch bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:         "validate [paths...]",
		Aliases:     []string{"lint"},
		Annotations: map[string]string{ConfigFlagsAnnotation: "true"},
		Short:       "Validate Claude project configuration files",
		Long: `Validate CLAUDE.md files, skills, settings, hooks, MCP servers, plugin
manifests, agents, LSP servers, output styles and commands.

Each file is parsed, checked against its JSON schema and then against the
rules enabled for it in .claudelint.yaml.

Exit codes:
  0  no problems (or only warnings below --max-warnings)
  1  lint errors, or too many warnings
  2  the configuration or a custom rule is broken`,
		Example: `  # Validate the current directory
  claudelint validate

  # Validate a plugin and a single settings file
  claudelint validate ./my-plugin .claude/settings.json

  # Fail on any warning
  claudelint validate --max-warnings 0

  # Annotate a GitHub Actions run
  claudelint validate --format github

  # Re-run on every change
  claudelint validate --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Paths = args
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringP("format", "f", "", "Output format: stylish, compact, json, github")
	cmd.Flags().Int("max-warnings", -1, "Fail when the number of warnings reaches this value (-1 to disable)")
	cmd.Flags().Bool("warnings-as-errors", false, "Fail on any warning")
	cmd.Flags().StringSlice("ignore-pattern", nil, "Glob of paths to skip (repeatable)")
	cmd.Flags().StringSlice("rules-dir", nil, "Starlark custom rule file or directory (repeatable)")
	cmd.Flags().Uint64("max-steps", 0, "Execution step limit for each custom rule check")
	cmd.Flags().String("on-invalid-options", "", "What to do with rules whose options fail their schema: defaults, disable")
	cmd.Flags().Int("concurrency", 0, "Files validated in parallel (0 for one per CPU)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when files change")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, f := range report.Formats() {
			names = append(names, string(f))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("on-invalid-options", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"defaults", "disable"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions) error {
	cmdCtx := NewCommandContext(cmd)

	sess, err := NewSession(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}

	if opts.Watch {
		cfgFile, _ := cmd.Flags().GetString("config")
		reload := func() (*config.Config, error) {
			return config.Load(cfgFile, cmd.Flags())
		}
		return watch(cmd.Context(), cmdCtx, sess, opts.Paths, reload)
	}

	code, err := validateOnce(cmd.Context(), cmdCtx.Renderer, sess, opts.Paths)
	if err != nil {
		return err
	}
	if code != report.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

// validateOnce runs discovery, validation and reporting, and returns the
// exit code the results call for.
func validateOnce(ctx context.Context, r *output.Renderer, sess *Session, paths []string) (int, error) {
	cfg := sess.Cfg

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return report.ExitFatal, err
	}

	files, err := sess.Discover(paths)
	if err != nil {
		return report.ExitFatal, err
	}

	results, err := sess.Run(ctx, files)
	if err != nil {
		return report.ExitFatal, err
	}

	rep := report.New(
		report.WithPolicy(cfg.Policy()),
		report.WithVerbose(cfg.Output.Verbose),
		report.WithColorProfile(r.ColorProfile()),
	)
	rep.Add(results...)
	if err := rep.Render(r.Writer(), format); err != nil {
		return report.ExitFatal, fmt.Errorf("render results: %w", err)
	}

	printDiagnostics(r.ErrWriter(), sess.Diags, cfg.Output.Verbose)
	return rep.ExitCode(), nil
}

// printDiagnostics writes the run's diagnostics to w and clears them, so
// that a watch loop shows each one once. Info entries are verbose only.
func printDiagnostics(w io.Writer, diags *diagnostics.Collector, verbose bool) {
	minLevel := diagnostics.LevelWarning
	if verbose {
		minLevel = diagnostics.LevelInfo
	}
	for _, d := range diags.Filter(minLevel) {
		_, _ = fmt.Fprintf(w, "%s: %s (%s)\n", d.Level, d.Message, d.Source)
	}
	diags.Clear()
}

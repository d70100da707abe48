// Package cli provides the command-line interface for claudelint.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/leapstack-labs/claudelint/internal/cli/commands"
	"github.com/leapstack-labs/claudelint/internal/cli/config"
	"github.com/leapstack-labs/claudelint/pkg/lint"
	"github.com/leapstack-labs/claudelint/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "claudelint",
		Short: "claudelint - Linter for Claude project configuration",
		Long: `claudelint checks the files that configure Claude for a project: CLAUDE.md
memory files, skills, settings, hooks, MCP servers, plugins, agents,
commands, LSP servers and output styles.

Rules are configured in .claudelint.yaml, with per-path overrides, and can
be extended with custom rules written in Starlark.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, configFlags(cmd))
			if err != nil {
				return err
			}

			logger, err := config.NewLogger(cmd.ErrOrStderr(), cfg.Log)
			if err != nil {
				return err
			}
			logger = logger.With("run_id", uuid.NewString())
			lint.SetDocsBaseURL(cfg.Output.DocsURL)

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if cfg.Output.Verbose && cfg.File != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", cfg.File)
			}
			logger.Debug("configuration loaded", "file", cfg.File, "project_root", cfg.ProjectRoot)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .claudelint.yaml, searched upward)")
	rootCmd.PersistentFlags().String("color", "", "Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json")

	_ = rootCmd.RegisterFlagCompletionFunc("color", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.ColorModes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{
		Version: Version,
		Commit:  GitCommit,
		Date:    BuildDate,
	}))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// configFlags returns the flags that feed configuration for cmd. Only
// commands annotated as taking configuration flags contribute their own;
// the rest contribute the global ones.
func configFlags(cmd *cobra.Command) *pflag.FlagSet {
	if cmd.Annotations[commands.ConfigFlagsAnnotation] == "true" {
		return cmd.Flags()
	}
	return cmd.Root().PersistentFlags()
}

// Execute runs the root command with args and returns the process exit
// code. Errors are printed to the command's error writer.
func Execute(ctx context.Context, args []string) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	code := ExitCode(err)
	if err != nil && code == report.ExitFatal {
		_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return code
}

// ExitCode maps the error a command returned to the process exit code.
// A completed run that failed carries its code; anything else is fatal.
func ExitCode(err error) int {
	if err == nil {
		return report.ExitOK
	}
	var exitErr *commands.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return report.ExitFatal
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for claudelint.

To load completions:

Bash:
  $ source <(claudelint completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ claudelint completion bash > /etc/bash_completion.d/claudelint
  # macOS:
  $ claudelint completion bash > $(brew --prefix)/etc/bash_completion.d/claudelint

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ claudelint completion zsh > "${fpath[1]}/_claudelint"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ claudelint completion fish | source

  # To load completions for each session, execute once:
  $ claudelint completion fish > ~/.config/fish/completions/claudelint.fish

PowerShell:
  PS> claudelint completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> claudelint completion powershell > claudelint.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}

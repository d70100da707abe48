package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary. It is filled in at build time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display claudelint version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "claudelint v%s\n", info.Version)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Linter for Claude project configuration")
			if info.Commit != "" && info.Commit != "unknown" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "commit %s, built %s\n", info.Commit, info.Date)
			}
		},
	}
}

// Package commands implements the CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/LHolmes69/ccs-calendarserver/cli/internal/update"
	"github.com/LHolmes69/ccs-calendarserver/cli/internal/version"
)

// NewRootCommand creates the root command with all subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ccs-upgrade",
		Short:   "Calendar server schema upgrade tool",
		Long:    "Applies versioned schema upgrade scripts to a calendar server database",
		Version: version.Get().String(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Best effort; never block the command on the update check.
			_ = update.CheckForUpdates(version.Version)
		},
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newUpgradeCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newVerifyCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

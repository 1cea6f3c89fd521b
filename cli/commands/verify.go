package commands

import (
	"github.com/spf13/cobra"

	"github.com/LHolmes69/ccs-calendarserver/cli/internal/ui"
	"github.com/LHolmes69/ccs-calendarserver/upgrade/schema"
)

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the shipped upgrade scripts",
		Long:  "Checks that every dialect ships the same gapless chain of upgrade versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			dialects, err := schema.Dialects()
			if err != nil {
				return err
			}
			if err := schema.VerifyDialects(); err != nil {
				ui.PrintError("Upgrade script verification failed")
				return err
			}
			ui.PrintSuccess("Upgrade chains consistent across %d dialect(s)", len(dialects))
			return nil
		},
	}
}

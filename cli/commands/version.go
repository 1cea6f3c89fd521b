package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LHolmes69/ccs-calendarserver/cli/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print detailed version and build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Get().FullString())
		},
	}
}

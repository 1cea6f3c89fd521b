package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LHolmes69/ccs-calendarserver/cli/internal/ui"
	"github.com/LHolmes69/ccs-calendarserver/upgrade"
	"github.com/LHolmes69/ccs-calendarserver/upgrade/schema"
)

func newStatusCommand() *cobra.Command {
	var provider string
	var databaseURL string
	var showSQL bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current schema version and pending upgrades",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), provider, databaseURL, showSQL)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Database provider (postgresql, mysql, sqlite)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Database connection string")
	cmd.Flags().BoolVar(&showSQL, "sql", false, "Show the SQL of pending steps")

	return cmd
}

func runStatus(ctx context.Context, provider, databaseURL string, showSQL bool) error {
	db, d, err := openDatabase(ctx, provider, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	registry, err := schema.LoadRegistry(d)
	if err != nil {
		return err
	}

	engine := upgrade.NewEngine(db, d, registry)
	status, err := engine.Status(ctx)
	if err != nil {
		return err
	}

	ui.PrintDim("provider %s, scripts from %s", d.Name(), d.ScriptDir())
	fmt.Printf("Current schema version: %d\n", status.Current)
	fmt.Printf("Latest known version:   %d\n", status.Latest)

	if len(status.Pending) == 0 {
		ui.PrintSuccess("Schema is up to date")
		return nil
	}

	ui.PrintWarning("%d upgrade step(s) pending", len(status.Pending))
	rows := make([][]string, 0, len(status.Pending))
	for _, step := range status.Pending {
		rows = append(rows, []string{
			strconv.Itoa(step.From),
			strconv.Itoa(step.To),
			strconv.Itoa(len(step.Statements)),
		})
	}
	ui.PrintTable([]string{"From", "To", "Statements"}, rows)

	if showSQL {
		var md strings.Builder
		for _, step := range status.Pending {
			fmt.Fprintf(&md, "## Upgrade %d to %d\n\n```sql\n%s\n```\n\n",
				step.From, step.To, strings.Join(step.Statements, ";\n"))
		}
		return ui.PrintMarkdown(md.String())
	}
	return nil
}

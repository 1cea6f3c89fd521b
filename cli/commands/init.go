package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/LHolmes69/ccs-calendarserver/cli/internal/ui"
	"github.com/LHolmes69/ccs-calendarserver/upgrade"
)

func newInitCommand() *cobra.Command {
	var provider string
	var databaseURL string
	var baseline int

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the schema version marker",
		Long:  "Creates the CALENDARSERVER table and seeds the version row at a baseline; a no-op when the row exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), provider, databaseURL, baseline)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Database provider (postgresql, mysql, sqlite)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Database connection string")
	cmd.Flags().IntVar(&baseline, "baseline", 0, "Baseline schema version to seed")

	return cmd
}

func runInit(ctx context.Context, provider, databaseURL string, baseline int) error {
	db, d, err := openDatabase(ctx, provider, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	store := upgrade.NewStore(db, d.Name())
	if err := store.Init(ctx, baseline); err != nil {
		return err
	}
	version, err := store.Read(ctx)
	if err != nil {
		return err
	}
	ui.PrintSuccess("Schema version marker present at version %d", version)
	return nil
}

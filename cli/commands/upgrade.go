package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LHolmes69/ccs-calendarserver/cli/internal/ui"
	"github.com/LHolmes69/ccs-calendarserver/upgrade"
	"github.com/LHolmes69/ccs-calendarserver/upgrade/schema"
)

func newUpgradeCommand() *cobra.Command {
	var provider string
	var databaseURL string
	var target int

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Apply pending schema upgrades",
		Long:  "Walks the upgrade chain from the current schema version to the target, one transaction per step",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpgrade(cmd.Context(), provider, databaseURL, target)
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Database provider (postgresql, mysql, sqlite)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Database connection string")
	cmd.Flags().IntVar(&target, "to", 0, "Target schema version (default: latest known)")

	return cmd
}

func runUpgrade(ctx context.Context, provider, databaseURL string, target int) error {
	db, d, err := openDatabase(ctx, provider, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	registry, err := schema.LoadRegistry(d)
	if err != nil {
		return err
	}
	if target == 0 {
		target = registry.Latest()
	}

	engine := upgrade.NewEngine(db, d, registry)
	applied, err := engine.Upgrade(ctx, target)
	for _, v := range applied {
		ui.PrintSuccess("Upgraded schema to version %d", v)
	}
	if err != nil {
		var stepErr *upgrade.StepError
		if errors.As(err, &stepErr) {
			ui.PrintError("Step %d to %d failed at statement %d",
				stepErr.From, stepErr.To, stepErr.Statement)
		}
		if errors.Is(err, upgrade.ErrUpgradeInProgress) {
			ui.PrintWarning("Another upgrade is in progress; retry later")
		}
		return err
	}

	if len(applied) == 0 {
		ui.PrintInfo("Schema already at version %d", target)
		return nil
	}
	fmt.Println()
	ui.PrintSuccess("Applied %d upgrade step(s)", len(applied))
	return nil
}

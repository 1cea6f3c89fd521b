package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LHolmes69/ccs-calendarserver/cli/internal/config"
	"github.com/LHolmes69/ccs-calendarserver/internal/debug"
	"github.com/LHolmes69/ccs-calendarserver/upgrade/dialect"
)

// openDatabase resolves the provider and DSN from config plus any
// command flag overrides, and opens the database.
func openDatabase(ctx context.Context, providerFlag, urlFlag string) (*sql.DB, dialect.Dialect, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	// The CCS_DEBUG environment variable wins over the config file.
	if cfg.Debug && !debug.Enabled() {
		debug.Init(true)
	}

	provider := cfg.Provider
	if providerFlag != "" {
		provider = providerFlag
	}
	dsn := cfg.DatabaseURL
	if urlFlag != "" {
		dsn = urlFlag
	}
	if dsn == "" {
		return nil, nil, fmt.Errorf("no database URL configured: set DATABASE_URL or pass --database-url")
	}

	d, err := dialect.ForProvider(provider)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return db, d, nil
}

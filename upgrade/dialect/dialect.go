// Package dialect provides backend-specific behavior for the upgrade
// engine. Each supported SQL backend ships its own upgrade scripts and
// its own way of guarding against concurrent upgrades.
package dialect

import (
	"context"
	"database/sql"
	"fmt"
)

// Dialect describes one SQL backend variant. Upgrade scripts are
// maintained per dialect; all dialects must expose the same chain of
// (from, to) versions.
type Dialect interface {
	// Name is the provider name as used in configuration.
	Name() string

	// DriverName is the database/sql driver to open connections with.
	DriverName() string

	// ScriptDir is the embedded directory holding this dialect's
	// upgrade scripts.
	ScriptDir() string

	// AcquireLock takes the backend's advisory upgrade lock on the given
	// connection without blocking. It reports false when another session
	// holds the lock. Advisory locks are session-scoped, so the caller
	// must hold the connection open and release on that same connection.
	AcquireLock(ctx context.Context, conn *sql.Conn) (bool, error)

	// ReleaseLock releases the advisory upgrade lock taken on conn.
	ReleaseLock(ctx context.Context, conn *sql.Conn) error
}

// ForProvider returns the dialect for a configured provider name.
func ForProvider(provider string) (Dialect, error) {
	switch provider {
	case "postgresql", "postgres":
		return Postgres{}, nil
	case "mysql":
		return MySQL{}, nil
	case "sqlite":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

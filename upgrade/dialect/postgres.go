package dialect

import (
	"context"
	"database/sql"
	"fmt"
)

// upgradeLockKey is the advisory lock key shared by all upgrade
// processes targeting the same database. Arbitrary but fixed.
const upgradeLockKey = 40270061

// Postgres is the PostgreSQL dialect. Concurrent upgrades are excluded
// with a session-level advisory lock.
type Postgres struct{}

func (Postgres) Name() string       { return "postgresql" }
func (Postgres) DriverName() string { return "postgres" }
func (Postgres) ScriptDir() string  { return "postgres-dialect" }

func (Postgres) AcquireLock(ctx context.Context, conn *sql.Conn) (bool, error) {
	var acquired bool
	err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, upgradeLockKey).Scan(&acquired)
	if err != nil {
		return false, fmt.Errorf("failed to acquire upgrade lock: %w", err)
	}
	return acquired, nil
}

func (Postgres) ReleaseLock(ctx context.Context, conn *sql.Conn) error {
	var released bool
	err := conn.QueryRowContext(ctx, `SELECT pg_advisory_unlock($1)`, upgradeLockKey).Scan(&released)
	if err != nil {
		return fmt.Errorf("failed to release upgrade lock: %w", err)
	}
	if !released {
		return fmt.Errorf("upgrade lock %d was not held by this session", upgradeLockKey)
	}
	return nil
}

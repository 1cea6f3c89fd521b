package dialect

import (
	"context"
	"database/sql"
	"fmt"
)

// upgradeLockName is the named lock shared by all upgrade processes
// targeting the same MySQL server.
const upgradeLockName = "ccs_schema_upgrade"

// MySQL is the MySQL dialect. Concurrent upgrades are excluded with
// GET_LOCK using a zero timeout, so a contended lock fails immediately
// instead of blocking.
type MySQL struct{}

func (MySQL) Name() string       { return "mysql" }
func (MySQL) DriverName() string { return "mysql" }
func (MySQL) ScriptDir() string  { return "mysql-dialect" }

func (MySQL) AcquireLock(ctx context.Context, conn *sql.Conn) (bool, error) {
	var acquired sql.NullInt64
	err := conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, 0)`, upgradeLockName).Scan(&acquired)
	if err != nil {
		return false, fmt.Errorf("failed to acquire upgrade lock: %w", err)
	}
	return acquired.Valid && acquired.Int64 == 1, nil
}

func (MySQL) ReleaseLock(ctx context.Context, conn *sql.Conn) error {
	var released sql.NullInt64
	err := conn.QueryRowContext(ctx, `SELECT RELEASE_LOCK(?)`, upgradeLockName).Scan(&released)
	if err != nil {
		return fmt.Errorf("failed to release upgrade lock: %w", err)
	}
	if !released.Valid || released.Int64 != 1 {
		return fmt.Errorf("upgrade lock %q was not held by this session", upgradeLockName)
	}
	return nil
}

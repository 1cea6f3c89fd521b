package dialect

import (
	"context"
	"database/sql"
)

// SQLite is the SQLite dialect. SQLite serializes writers at the file
// level, so the advisory lock is a no-op; the upgrade window is assumed
// to be single-process.
type SQLite struct{}

func (SQLite) Name() string       { return "sqlite" }
func (SQLite) DriverName() string { return "sqlite3" }
func (SQLite) ScriptDir() string  { return "sqlite-dialect" }

func (SQLite) AcquireLock(ctx context.Context, conn *sql.Conn) (bool, error) {
	return true, nil
}

func (SQLite) ReleaseLock(ctx context.Context, conn *sql.Conn) error {
	return nil
}

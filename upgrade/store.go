package upgrade

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

// Store reads and writes the stored schema version. The version lives in
// the CALENDARSERVER configuration table as the single row with
// NAME = 'VERSION'; the value is stored as text, matching the upgrade
// scripts that set it with a literal UPDATE.
type Store struct {
	db       *sql.DB
	provider string
}

// NewStore creates a version store for the given provider
// ("postgresql", "mysql", or "sqlite").
func NewStore(db *sql.DB, provider string) *Store {
	return &Store{db: db, provider: provider}
}

// Init creates the CALENDARSERVER table if needed and seeds the version
// row at baseline. It is a no-op when the row already exists.
func (s *Store) Init(ctx context.Context, baseline int) error {
	if _, err := s.db.ExecContext(ctx, s.createTableSQL()); err != nil {
		return fmt.Errorf("failed to create version table: %w", err)
	}
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM CALENDARSERVER WHERE NAME = 'VERSION'`)
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("failed to inspect version row: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, s.insertSQL(), strconv.Itoa(baseline))
	if err != nil {
		return fmt.Errorf("failed to seed version row: %w", err)
	}
	return nil
}

// Read returns the current stored schema version. It fails with
// ErrStorageUnavailable when the database cannot be reached and with
// ErrCorruptState when the version row is missing, duplicated, or not an
// integer.
func (s *Store) Read(ctx context.Context) (int, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT VALUE FROM CALENDARSERVER WHERE NAME = 'VERSION'`)
	if err != nil {
		return 0, fmt.Errorf("failed to query version row: %w: %w", ErrCorruptState, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return 0, fmt.Errorf("failed to scan version row: %w", err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if len(values) != 1 {
		return 0, fmt.Errorf("expected exactly one version row, found %d: %w",
			len(values), ErrCorruptState)
	}
	version, err := strconv.Atoi(values[0])
	if err != nil {
		return 0, fmt.Errorf("version value %q is not an integer: %w",
			values[0], ErrCorruptState)
	}
	return version, nil
}

// Write updates the version row inside the caller's transaction. It never
// commits or rolls back; the caller owns the transaction boundary.
func (s *Store) Write(ctx context.Context, tx *sql.Tx, newVersion int) error {
	_, err := tx.ExecContext(ctx, s.updateSQL(), strconv.Itoa(newVersion))
	if err != nil {
		return fmt.Errorf("failed to update version row: %w", err)
	}
	return nil
}

// createTableSQL returns SQL to create the CALENDARSERVER table.
func (s *Store) createTableSQL() string {
	switch s.provider {
	case "postgresql", "postgres":
		return `
			CREATE TABLE IF NOT EXISTS CALENDARSERVER (
				NAME VARCHAR(255) PRIMARY KEY,
				VALUE VARCHAR(255)
			)
		`
	case "mysql":
		return `
			CREATE TABLE IF NOT EXISTS CALENDARSERVER (
				NAME VARCHAR(255) PRIMARY KEY,
				VALUE VARCHAR(255)
			)
		`
	case "sqlite":
		return `
			CREATE TABLE IF NOT EXISTS CALENDARSERVER (
				NAME TEXT PRIMARY KEY,
				VALUE TEXT
			)
		`
	default:
		return ""
	}
}

// insertSQL returns SQL to insert the version row.
func (s *Store) insertSQL() string {
	switch s.provider {
	case "postgresql", "postgres":
		return `INSERT INTO CALENDARSERVER (NAME, VALUE) VALUES ('VERSION', $1)`
	case "mysql", "sqlite":
		return `INSERT INTO CALENDARSERVER (NAME, VALUE) VALUES ('VERSION', ?)`
	default:
		return ""
	}
}

// updateSQL returns SQL to update the version row.
func (s *Store) updateSQL() string {
	switch s.provider {
	case "postgresql", "postgres":
		return `UPDATE CALENDARSERVER SET VALUE = $1 WHERE NAME = 'VERSION'`
	case "mysql", "sqlite":
		return `UPDATE CALENDARSERVER SET VALUE = ? WHERE NAME = 'VERSION'`
	default:
		return ""
	}
}

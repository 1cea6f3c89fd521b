package upgrade

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable indicates the database cannot be reached.
	// The caller may retry after reconnecting.
	ErrStorageUnavailable = errors.New("schema version storage unavailable")

	// ErrCorruptState indicates the version table is malformed (zero or
	// multiple version rows, or a value that is not an integer). Requires
	// manual intervention.
	ErrCorruptState = errors.New("schema version table is corrupt")

	// ErrNoPath indicates the target version cannot be reached from the
	// current version: either a downgrade was requested or the chain of
	// upgrade steps has a gap.
	ErrNoPath = errors.New("no upgrade path to target version")

	// ErrRegistryIntegrity indicates the set of upgrade steps is invalid:
	// duplicate source versions, a step that does not increase the
	// version, or a step with no statements.
	ErrRegistryIntegrity = errors.New("upgrade registry integrity violation")

	// ErrMigrationFailed matches any StepError via errors.Is.
	ErrMigrationFailed = errors.New("schema upgrade step failed")

	// ErrUpgradeInProgress indicates another process holds the upgrade
	// lock. The caller should back off and retry later.
	ErrUpgradeInProgress = errors.New("another schema upgrade is in progress")
)

// StepError reports a failed upgrade step. Statement is the 1-based index
// of the failing statement within the step; the version row update counts
// as the final statement.
type StepError struct {
	From      int
	To        int
	Statement int
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("upgrade step %d to %d failed at statement %d: %v",
		e.From, e.To, e.Statement, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func (e *StepError) Is(target error) bool { return target == ErrMigrationFailed }

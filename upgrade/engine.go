package upgrade

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LHolmes69/ccs-calendarserver/internal/debug"
	"github.com/LHolmes69/ccs-calendarserver/upgrade/dialect"
)

// Engine applies upgrade steps against a database. One engine serves one
// database; the caller constructs the connection.
type Engine struct {
	db       *sql.DB
	dialect  dialect.Dialect
	registry *Registry
	store    *Store
}

// NewEngine creates an upgrade engine for the given database, dialect,
// and step registry.
func NewEngine(db *sql.DB, d dialect.Dialect, registry *Registry) *Engine {
	return &Engine{
		db:       db,
		dialect:  d,
		registry: registry,
		store:    NewStore(db, d.Name()),
	}
}

// Store returns the engine's version store.
func (e *Engine) Store() *Store { return e.store }

// Status describes where a database stands relative to the registry.
type Status struct {
	Current int
	Latest  int
	Pending []Step
}

// Status reports the current stored version and the steps still to apply
// to reach the latest known version.
func (e *Engine) Status(ctx context.Context) (*Status, error) {
	current, err := e.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	latest := e.registry.Latest()
	status := &Status{Current: current, Latest: latest}
	if current < latest {
		pending, err := e.registry.BuildChain(current, latest)
		if err != nil {
			return nil, err
		}
		status.Pending = pending
	}
	return status, nil
}

// UpgradeToLatest upgrades to the highest version the registry knows.
func (e *Engine) UpgradeToLatest(ctx context.Context) ([]int, error) {
	return e.Upgrade(ctx, e.registry.Latest())
}

// Upgrade brings the database from its current version to target,
// applying each step of the chain in its own transaction. The version
// row is updated as the final statement of each step's transaction, so a
// step's schema changes and its version bump commit together or not at
// all. On success it returns the ordered list of versions reached; when
// the database is already at target it returns an empty list.
//
// A failed statement rolls back the whole step and aborts the run; the
// database stays at the version of the last committed step. Cancellation
// is honored between steps only.
func (e *Engine) Upgrade(ctx context.Context, target int) ([]int, error) {
	// Advisory locks are session-scoped. The lock is taken on a pinned
	// connection held for the whole run, and released on that same
	// connection; releasing through the pool would land on an arbitrary
	// session and leak the lock.
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve connection for upgrade lock: %w", err)
	}
	acquired, err := e.dialect.AcquireLock(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if !acquired {
		conn.Close()
		return nil, ErrUpgradeInProgress
	}
	defer func() {
		if err := e.dialect.ReleaseLock(context.WithoutCancel(ctx), conn); err != nil {
			debug.Warn("failed to release upgrade lock", "error", err)
		}
		conn.Close()
	}()

	current, err := e.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	if current == target {
		debug.Debug("schema already at target version", "version", target)
		return []int{}, nil
	}

	chain, err := e.registry.BuildChain(current, target)
	if err != nil {
		return nil, err
	}

	applied := make([]int, 0, len(chain))
	for _, step := range chain {
		if err := ctx.Err(); err != nil {
			return applied, fmt.Errorf("upgrade halted before step %d to %d: %w",
				step.From, step.To, err)
		}
		if err := e.applyStep(ctx, step); err != nil {
			return applied, err
		}
		applied = append(applied, step.To)
		debug.Info("applied schema upgrade step", "from", step.From, "to", step.To)
	}
	return applied, nil
}

// applyStep runs one step inside a single transaction: every statement in
// the script's literal order, then the version row update, then commit.
func (e *Engine) applyStep(ctx context.Context, step Step) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for step %d to %d: %w",
			step.From, step.To, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	for i, stmt := range step.Statements {
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return &StepError{From: step.From, To: step.To, Statement: i + 1, Err: err}
		}
	}

	if err := e.store.Write(ctx, tx, step.To); err != nil {
		_ = tx.Rollback()
		return &StepError{From: step.From, To: step.To, Statement: len(step.Statements) + 1, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &StepError{From: step.From, To: step.To, Statement: len(step.Statements) + 1,
			Err: fmt.Errorf("commit failed: %w", err)}
	}
	return nil
}

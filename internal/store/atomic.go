package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so ledger operations can
// run standalone or inside an atomic unit.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RunAtomic runs fn inside a single database transaction. Either every write
// fn makes commits or none does. An error returned by fn is passed back
// unchanged after rollback.
//
// The database is opened with immediate transactions (see db.Open), so the
// write lock is held from the start of fn until commit or rollback and no
// other atomic unit observes intermediate state.
//
// fn must use only the given tx. Going through the *sql.DB from inside fn can
// deadlock on single-connection databases.
func RunAtomic(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

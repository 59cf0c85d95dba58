package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier provides the exec surface shared by *sql.DB and *sql.Tx. Every
// statement takes a context because the server is remote; the hook's delivery
// timeout has to be able to cut a stalled write short.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Transact runs fn in a transaction. The write is deliberately single-shot:
// a hook that cannot commit reports failure and lets the next hook event
// carry the next record, instead of retrying against a database that is
// probably down.
func Transact(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// txKey is the key type for storing transaction in context
type txKey struct{}

// Executor is the query surface shared by *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx returns a new context with the transaction attached
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTx retrieves the transaction from context if it exists
func GetTx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// GetExecutor returns either a transaction from context or the base db connection
// so repositories join a surrounding transaction when there is one
func GetExecutor(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := GetTx(ctx); ok {
		return tx
	}
	return db
}

// RunInTransaction executes fn within a database transaction
// A transaction already present in ctx is reused and left for the outer caller to finish.
// Otherwise a new one is started and committed, or rolled back if fn fails.
func RunInTransaction(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if _, ok := GetTx(ctx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(WithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).AnErr("cause", err).Msg("Failed to roll back transaction")
			return fmt.Errorf("failed to rollback transaction after error %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

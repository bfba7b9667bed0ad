// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// helpers to run functions inside a transaction, pool setup and
// driver error classification.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// Runner hands out a handle for single statements and runs multi-statement
// units inside a transaction. Services depend on it instead of *sql.DB so
// that the in-memory store can run without a database.
type Runner interface {
	Conn() DBTX
	InTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLRunner is the Runner backed by a real connection pool.
type SQLRunner struct {
	db *sql.DB
}

func NewRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) Conn() DBTX { return r.db }

func (r *SQLRunner) InTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	return WithTx(ctx, r.db, opts, fn)
}

// NoTxRunner is used with stores that keep no SQL connection. Conn returns
// nil and InTx simply calls fn.
type NoTxRunner struct{}

func (NoTxRunner) Conn() DBTX { return nil }

func (NoTxRunner) InTx(ctx context.Context, _ *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	return fn(ctx, nil)
}

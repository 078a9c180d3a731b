// Package dbx provides the small DB abstractions shared by repositories:
// DBTX (implemented by *sql.DB and *sql.Tx), a transaction helper, and the
// Transactor seam that lets services run against PostgreSQL or memory.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Transactor runs fn as one unit of work. Every repository obtained from tx
// inside fn takes part in the same unit.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
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

// SQLTransactor is the Transactor for a real database.
type SQLTransactor struct {
	db   *sql.DB
	opts *sql.TxOptions
}

func NewSQLTransactor(db *sql.DB, opts *sql.TxOptions) *SQLTransactor {
	return &SQLTransactor{db: db, opts: opts}
}

func (t *SQLTransactor) WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return WithTx(ctx, t.db, t.opts, fn)
}

type undoKey struct{}

// undoLog collects the compensating actions of one memory unit of work.
type undoLog struct {
	mu  sync.Mutex
	fns []func()
}

func (u *undoLog) add(fn func()) {
	u.mu.Lock()
	u.fns = append(u.fns, fn)
	u.mu.Unlock()
}

func (u *undoLog) rollback() {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := len(u.fns) - 1; i >= 0; i-- {
		u.fns[i]()
	}
	u.fns = nil
}

// OnRollback registers fn to undo a write made by an in-memory store. It is
// run if the enclosing memory unit of work fails. Outside a unit it does
// nothing.
func OnRollback(ctx context.Context, fn func()) {
	if u, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		u.add(fn)
	}
}

// MemoryTransactor backs the in-memory repositories. Units of work run
// concurrently with a nil handle; callers serialize writes to the same row
// themselves. On error or panic the writes of the failed unit are undone
// newest first. A nested unit joins the outer one.
type MemoryTransactor struct{}

func NewMemoryTransactor() *MemoryTransactor {
	return &MemoryTransactor{}
}

func (t *MemoryTransactor) WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) (err error) {
	if _, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		return fn(ctx, nil)
	}

	u := &undoLog{}
	ctx = context.WithValue(ctx, undoKey{}, u)

	defer func() {
		if p := recover(); p != nil {
			u.rollback()
			panic(p)
		}
		if err != nil {
			u.rollback()
		}
	}()

	err = fn(ctx, nil)
	return err
}

// PostgreSQL SQLSTATE codes we react to.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsRetryable reports whether the server aborted the transaction in a way a
// caller may simply retry.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

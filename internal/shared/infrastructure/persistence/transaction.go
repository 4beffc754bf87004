package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoTransaction is returned by Commit and Rollback when Begin was never
// called on the context.
var ErrNoTransaction = errors.New("persistence: no transaction in context")

// Registering an account writes the account, its trial subscription and the
// outbox rows together. Repositories find the open transaction on the
// context; a nested Begin joins it and only the outermost unit commits.

type (
	pgTxKey     struct{}
	sqliteTxKey struct{}
)

// TxInfo is the open Postgres transaction. Owned is false for a unit that
// joined an outer transaction.
type TxInfo struct {
	Tx    pgx.Tx
	Owned bool
}

// SQLiteTxInfo is the SQLite counterpart of TxInfo.
type SQLiteTxInfo struct {
	Tx    *sql.Tx
	Owned bool
}

// WithTx puts a Postgres transaction on ctx.
func WithTx(ctx context.Context, tx pgx.Tx, owned bool) context.Context {
	return context.WithValue(ctx, pgTxKey{}, TxInfo{Tx: tx, Owned: owned})
}

// TxInfoFromContext returns the Postgres transaction on ctx, if any.
func TxInfoFromContext(ctx context.Context) (TxInfo, bool) {
	info, ok := ctx.Value(pgTxKey{}).(TxInfo)
	return info, ok && info.Tx != nil
}

// WithSQLiteTx puts a SQLite transaction on ctx.
func WithSQLiteTx(ctx context.Context, tx *sql.Tx, owned bool) context.Context {
	return context.WithValue(ctx, sqliteTxKey{}, SQLiteTxInfo{Tx: tx, Owned: owned})
}

// SQLiteTxInfoFromContext returns the SQLite transaction on ctx, if any.
func SQLiteTxInfoFromContext(ctx context.Context) (SQLiteTxInfo, bool) {
	info, ok := ctx.Value(sqliteTxKey{}).(SQLiteTxInfo)
	return info, ok && info.Tx != nil
}

// DBExecutor is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Executor picks the transaction on ctx, falling back to the pool.
func Executor(ctx context.Context, pool *pgxpool.Pool) DBExecutor {
	if info, ok := TxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return pool
}

// PostgresUnitOfWork opens transactions on a pgx pool.
type PostgresUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewPostgresUnitOfWork binds a unit of work to pool.
func NewPostgresUnitOfWork(pool *pgxpool.Pool) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{pool: pool}
}

// Begin joins the transaction on ctx or opens a new one.
func (u *PostgresUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if info, ok := TxInfoFromContext(ctx); ok {
		return WithTx(ctx, info.Tx, false), nil
	}
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return WithTx(ctx, tx, true), nil
}

// Commit commits when this unit opened the transaction.
func (u *PostgresUnitOfWork) Commit(ctx context.Context) error {
	return settlePostgres(ctx, func(tx pgx.Tx) error { return tx.Commit(ctx) })
}

// Rollback rolls back when this unit opened the transaction.
func (u *PostgresUnitOfWork) Rollback(ctx context.Context) error {
	return settlePostgres(ctx, func(tx pgx.Tx) error { return tx.Rollback(ctx) })
}

func settlePostgres(ctx context.Context, fn func(pgx.Tx) error) error {
	info, ok := TxInfoFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !info.Owned {
		return nil
	}
	return fn(info.Tx)
}

// SQLiteUnitOfWork opens transactions on a database/sql handle.
type SQLiteUnitOfWork struct {
	db *sql.DB
}

// NewSQLiteUnitOfWork binds a unit of work to db.
func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// Begin joins the transaction on ctx or opens a new one.
func (u *SQLiteUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if info, ok := SQLiteTxInfoFromContext(ctx); ok {
		return WithSQLiteTx(ctx, info.Tx, false), nil
	}
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return WithSQLiteTx(ctx, tx, true), nil
}

// Commit commits when this unit opened the transaction.
func (u *SQLiteUnitOfWork) Commit(ctx context.Context) error {
	return settleSQLite(ctx, (*sql.Tx).Commit)
}

// Rollback rolls back when this unit opened the transaction.
func (u *SQLiteUnitOfWork) Rollback(ctx context.Context) error {
	return settleSQLite(ctx, (*sql.Tx).Rollback)
}

func settleSQLite(ctx context.Context, fn func(*sql.Tx) error) error {
	info, ok := SQLiteTxInfoFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}
	if !info.Owned {
		return nil
	}
	return fn(info.Tx)
}

package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) { return f, nil }
func (f *fakeTx) Commit(context.Context) error          { f.committed = true; return nil }
func (f *fakeTx) Rollback(context.Context) error        { f.rolledBack = true; return nil }
func (f *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (f *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (f *fakeTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (f *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (f *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (f *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (f *fakeTx) Conn() *pgx.Conn                                         { return nil }

func TestPostgresUnitOfWork_OnlyOwnerCommits(t *testing.T) {
	tx := &fakeTx{}
	uow := NewPostgresUnitOfWork(nil)

	outer := WithTx(context.Background(), tx, true)
	inner, err := uow.Begin(outer)
	require.NoError(t, err)

	info, ok := TxInfoFromContext(inner)
	require.True(t, ok)
	assert.False(t, info.Owned)

	require.NoError(t, uow.Commit(inner))
	assert.False(t, tx.committed)

	require.NoError(t, uow.Commit(outer))
	assert.True(t, tx.committed)

	assert.Same(t, tx, Executor(outer, nil))
}

func TestPostgresUnitOfWork_NoTransaction(t *testing.T) {
	uow := NewPostgresUnitOfWork(nil)
	assert.ErrorIs(t, uow.Commit(context.Background()), ErrNoTransaction)
	assert.ErrorIs(t, uow.Rollback(context.Background()), ErrNoTransaction)
	assert.ErrorIs(t, NewSQLiteUnitOfWork(nil).Commit(context.Background()), ErrNoTransaction)
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE tickets (id INTEGER PRIMARY KEY, subject TEXT)`)
	require.NoError(t, err)
	return db
}

func countTickets(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tickets`).Scan(&n))
	return n
}

func TestSQLiteUnitOfWork_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	uow := NewSQLiteUnitOfWork(db)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	info, ok := SQLiteTxInfoFromContext(txCtx)
	require.True(t, ok)
	_, err = info.Tx.Exec(`INSERT INTO tickets (subject) VALUES ('kept')`)
	require.NoError(t, err)
	require.NoError(t, uow.Commit(txCtx))

	txCtx, err = uow.Begin(ctx)
	require.NoError(t, err)
	info, _ = SQLiteTxInfoFromContext(txCtx)
	_, err = info.Tx.Exec(`INSERT INTO tickets (subject) VALUES ('dropped')`)
	require.NoError(t, err)
	require.NoError(t, uow.Rollback(txCtx))

	assert.Equal(t, 1, countTickets(t, db))
}

func TestSQLiteUnitOfWork_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	uow := NewSQLiteUnitOfWork(db)

	outer, err := uow.Begin(ctx)
	require.NoError(t, err)
	inner, err := uow.Begin(outer)
	require.NoError(t, err)

	outerInfo, _ := SQLiteTxInfoFromContext(outer)
	innerInfo, _ := SQLiteTxInfoFromContext(inner)
	assert.Same(t, outerInfo.Tx, innerInfo.Tx)
	assert.False(t, innerInfo.Owned)

	require.NoError(t, uow.Commit(inner))
	require.NoError(t, uow.Rollback(outer))
}

func TestSQLiteTime_RoundTripAndOrder(t *testing.T) {
	a := time.Date(2026, 3, 1, 9, 0, 0, 5, time.FixedZone("CET", 3600))
	b := a.Add(time.Second)

	sa, sb := FormatSQLiteTime(a), FormatSQLiteTime(b)
	assert.Less(t, sa, sb)

	parsed, err := ParseSQLiteTime(sa)
	require.NoError(t, err)
	assert.True(t, a.Equal(parsed))

	legacy, err := ParseSQLiteTime("2026-03-01T08:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2026, legacy.Year())

	assert.Nil(t, ParseSQLiteNullTime(sql.NullString{}))
	assert.NotNil(t, ParseSQLiteNullTime(sql.NullString{String: sa, Valid: true}))
}

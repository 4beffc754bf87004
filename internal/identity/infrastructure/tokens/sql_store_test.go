package tokens_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/felixgeelhaar/consulta/internal/identity/application"
	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	"github.com/felixgeelhaar/consulta/internal/identity/infrastructure/tokens"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTokenDB(t *testing.T) (*sql.DB, uuid.UUID) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))

	id := uuid.New()
	_, err = db.Exec(`
		INSERT INTO accounts (id, email, name, password_hash, created_at, updated_at)
		VALUES (?, 'ada@example.com', 'Ada', 'hash', '2026-03-01T12:00:00Z', '2026-03-01T12:00:00Z')
	`, id.String())
	require.NoError(t, err)
	return db, id
}

func TestSQLiteStore_IssueAndConsumeOnce(t *testing.T) {
	ctx := context.Background()
	db, accountID := openTokenDB(t)

	token, err := tokens.NewSQLiteStore(db).Issue(ctx, application.PurposeVerifyEmail, accountID, time.Hour)
	require.NoError(t, err)

	var stored string
	require.NoError(t, db.QueryRow(`SELECT token_hash FROM one_time_tokens`).Scan(&stored))
	assert.NotEqual(t, token, stored, "only the hash is stored")

	// A second store on the same database stands in for the next CLI run.
	next := tokens.NewSQLiteStore(db)
	_, err = next.Consume(ctx, application.PurposePasswordReset, token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	got, err := next.Consume(ctx, application.PurposeVerifyEmail, token)
	require.NoError(t, err)
	assert.Equal(t, accountID, got)

	_, err = next.Consume(ctx, application.PurposeVerifyEmail, token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	_, err = next.Consume(ctx, application.PurposeVerifyEmail, "")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestSQLiteStore_ExpiredTokens(t *testing.T) {
	ctx := context.Background()
	db, accountID := openTokenDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := tokens.NewSQLiteStore(db).WithClock(func() time.Time { return now })

	stale, err := store.Issue(ctx, application.PurposePasswordReset, accountID, time.Hour)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = store.Consume(ctx, application.PurposePasswordReset, stale)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = store.Issue(ctx, application.PurposePasswordReset, accountID, time.Minute)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = store.Issue(ctx, application.PurposeVerifyEmail, accountID, time.Hour)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM one_time_tokens`).Scan(&n))
	assert.Equal(t, 1, n, "issuing sweeps expired rows")
}

func TestSQLiteStore_DeletedAccountDropsTokens(t *testing.T) {
	ctx := context.Background()
	db, accountID := openTokenDB(t)
	store := tokens.NewSQLiteStore(db)

	token, err := store.Issue(ctx, application.PurposeVerifyEmail, accountID, time.Hour)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM accounts WHERE id = ?`, accountID.String())
	require.NoError(t, err)

	_, err = store.Consume(ctx, application.PurposeVerifyEmail, token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

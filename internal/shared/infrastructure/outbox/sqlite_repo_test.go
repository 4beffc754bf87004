package outbox_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/consulta/internal/shared/application"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openOutboxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

func TestSQLiteRepository_SaveAndFetch(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewSQLiteRepository(openOutboxDB(t))

	first := pendingMessage("billing.subscription.started")
	first.Metadata = json.RawMessage(`{"AccountID":"00000000-0000-0000-0000-000000000001"}`)
	second := pendingMessage("billing.subscription.activated")
	second.CreatedAt = first.CreatedAt.Add(time.Millisecond)
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{second, first}))
	assert.NotZero(t, first.ID)

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.EventID, pending[0].EventID, "oldest first")
	assert.Equal(t, first.AggregateID, pending[0].AggregateID)
	assert.JSONEq(t, string(first.Payload), string(pending[0].Payload))
	assert.JSONEq(t, string(first.Metadata), string(pending[0].Metadata))
	assert.WithinDuration(t, first.CreatedAt, pending[0].CreatedAt, time.Microsecond)
}

func TestSQLiteRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewSQLiteRepository(openOutboxDB(t))

	published := pendingMessage("a")
	retried := pendingMessage("b")
	dead := pendingMessage("c")
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{published, retried, dead}))

	require.NoError(t, repo.MarkPublished(ctx, published.ID))
	require.NoError(t, repo.MarkFailed(ctx, retried.ID, "broker down", time.Now().Add(time.Hour)))
	require.NoError(t, repo.MarkDead(ctx, dead.ID, "poison"))

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, repo.MarkFailed(ctx, retried.ID, "broker down", time.Now().Add(-time.Second)))
	pending, err = repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].RetryCount)
	require.NotNil(t, pending[0].LastError)
	assert.Equal(t, "broker down", *pending[0].LastError)

	removed, err := repo.DeleteOld(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestSQLiteRepository_JoinsUnitOfWork(t *testing.T) {
	ctx := context.Background()
	db := openOutboxDB(t)
	repo := outbox.NewSQLiteRepository(db)
	uow := persistence.NewSQLiteUnitOfWork(db)

	err := application.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
		if err := repo.Save(txCtx, pendingMessage("rolled.back")); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	pending, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "rollback discards outbox rows")
}

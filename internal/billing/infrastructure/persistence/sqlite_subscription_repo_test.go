package persistence_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/felixgeelhaar/consulta/internal/billing/infrastructure/persistence"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/felixgeelhaar/consulta/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

func insertAccount(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := sharedPersistence.FormatSQLiteTime(time.Now())
	_, err := db.Exec(`INSERT INTO accounts (id, email, name, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), id.String()+"@example.com", "Test", "hash", now, now)
	require.NoError(t, err)
	return id
}

var created = time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)

func TestSQLiteSubscriptionRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := persistence.NewSQLiteSubscriptionRepository(db)
	accountID := insertAccount(t, db)

	trial := domain.NewTrialSubscription(accountID, created)
	require.NoError(t, repo.Create(ctx, trial))

	got, err := repo.FindByAccountID(ctx, accountID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.PlanUserStandard, got.Plan)
	assert.Equal(t, domain.SubscriptionTrial, got.Status)
	assert.True(t, trial.ExpiresAt.Equal(got.ExpiresAt))
	assert.Equal(t, 0, got.Version)

	missing, err := repo.FindByAccountID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteSubscriptionRepository_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := persistence.NewSQLiteSubscriptionRepository(db)
	accountID := insertAccount(t, db)
	require.NoError(t, repo.Create(ctx, domain.NewTrialSubscription(accountID, created)))

	current, err := repo.FindByAccountID(ctx, accountID)
	require.NoError(t, err)

	next, err := current.ApplyCheckout(domain.PlanCorporate, domain.BillingAnnual, created.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.CompareAndSwap(ctx, next))

	stored, err := repo.FindByAccountID(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCorporate, stored.Plan)
	assert.Equal(t, domain.SubscriptionActive, stored.Status)
	assert.Equal(t, domain.BillingAnnual, stored.BillingPeriod)
	assert.True(t, next.ExpiresAt.Equal(stored.ExpiresAt))
	assert.Equal(t, 1, stored.Version)

	// A writer holding the old version loses.
	err = repo.CompareAndSwap(ctx, next)
	assert.ErrorIs(t, err, domain.ErrStaleSubscription)

	unchanged, err := repo.FindByAccountID(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, *stored, *unchanged)
}

func TestSQLiteSubscriptionRepository_DeleteCascadesFromAccount(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := persistence.NewSQLiteSubscriptionRepository(db)
	accountID := insertAccount(t, db)
	require.NoError(t, repo.Create(ctx, domain.NewTrialSubscription(accountID, created)))

	require.NoError(t, repo.DeleteByAccountID(ctx, accountID))
	got, err := repo.FindByAccountID(ctx, accountID)
	require.NoError(t, err)
	assert.Nil(t, got)

	other := insertAccount(t, db)
	require.NoError(t, repo.Create(ctx, domain.NewTrialSubscription(other, created)))
	_, err = db.Exec(`DELETE FROM accounts WHERE id = ?`, other.String())
	require.NoError(t, err)
	got, err = repo.FindByAccountID(ctx, other)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteSubscriptionRepository_UsesContextTransaction(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := persistence.NewSQLiteSubscriptionRepository(db)
	accountID := insertAccount(t, db)

	uow := sharedPersistence.NewSQLiteUnitOfWork(db)
	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Create(txCtx, domain.NewTrialSubscription(accountID, created)))
	require.NoError(t, uow.Rollback(txCtx))

	got, err := repo.FindByAccountID(ctx, accountID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	sharedPersistence "github.com/felixgeelhaar/consulta/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteSubscriptionRepository implements SubscriptionRepository with SQLite.
type SQLiteSubscriptionRepository struct {
	dbConn *sql.DB
}

// NewSQLiteSubscriptionRepository creates a new repository.
func NewSQLiteSubscriptionRepository(dbConn *sql.DB) *SQLiteSubscriptionRepository {
	return &SQLiteSubscriptionRepository{dbConn: dbConn}
}

// getDB returns the appropriate database connection based on context.
func (r *SQLiteSubscriptionRepository) getDB(ctx context.Context) interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
} {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.dbConn
}

// Create inserts the first subscription of an account.
func (r *SQLiteSubscriptionRepository) Create(ctx context.Context, sub domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			account_id, plan, status, billing_period, expires_at,
			version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.getDB(ctx).ExecContext(ctx, query,
		sub.AccountID.String(),
		string(sub.Plan),
		string(sub.Status),
		string(sub.BillingPeriod),
		sharedPersistence.FormatSQLiteTime(sub.ExpiresAt),
		sub.Version,
		sharedPersistence.FormatSQLiteTime(sub.CreatedAt),
		sharedPersistence.FormatSQLiteTime(sub.UpdatedAt),
	)
	return err
}

// CompareAndSwap replaces the whole record in one statement, provided the
// stored version still equals next.Version.
func (r *SQLiteSubscriptionRepository) CompareAndSwap(ctx context.Context, next domain.Subscription) error {
	query := `
		UPDATE subscriptions
		SET plan = ?, status = ?, billing_period = ?, expires_at = ?,
		    updated_at = ?, version = version + 1
		WHERE account_id = ? AND version = ?
	`
	result, err := r.getDB(ctx).ExecContext(ctx, query,
		string(next.Plan),
		string(next.Status),
		string(next.BillingPeriod),
		sharedPersistence.FormatSQLiteTime(next.ExpiresAt),
		sharedPersistence.FormatSQLiteTime(next.UpdatedAt),
		next.AccountID.String(),
		next.Version,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrStaleSubscription
	}
	return nil
}

// FindByAccountID returns the subscription for an account.
func (r *SQLiteSubscriptionRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT account_id, plan, status, billing_period, expires_at,
		       version, created_at, updated_at
		FROM subscriptions
		WHERE account_id = ?
	`

	var (
		idStr, plan, status, period     string
		expiresAt, createdAt, updatedAt string
		sub                             domain.Subscription
	)
	err := r.getDB(ctx).QueryRowContext(ctx, query, accountID.String()).Scan(
		&idStr, &plan, &status, &period, &expiresAt,
		&sub.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if sub.AccountID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if sub.ExpiresAt, err = sharedPersistence.ParseSQLiteTime(expiresAt); err != nil {
		return nil, err
	}
	sub.CreatedAt, _ = sharedPersistence.ParseSQLiteTime(createdAt)
	sub.UpdatedAt, _ = sharedPersistence.ParseSQLiteTime(updatedAt)
	sub.Plan = domain.PlanID(plan)
	sub.Status = domain.SubscriptionStatus(status)
	sub.BillingPeriod = domain.BillingPeriod(period)
	return &sub, nil
}

// DeleteByAccountID removes the account's subscription, if any.
func (r *SQLiteSubscriptionRepository) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	_, err := r.getDB(ctx).ExecContext(ctx, `DELETE FROM subscriptions WHERE account_id = ?`, accountID.String())
	return err
}

var _ domain.SubscriptionRepository = (*SQLiteSubscriptionRepository)(nil)

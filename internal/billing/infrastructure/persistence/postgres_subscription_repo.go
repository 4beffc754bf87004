package persistence

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	sharedPersistence "github.com/felixgeelhaar/consulta/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSubscriptionRepository implements SubscriptionRepository with PostgreSQL.
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubscriptionRepository creates a new repository.
func NewPostgresSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Create inserts the first subscription of an account.
func (r *PostgresSubscriptionRepository) Create(ctx context.Context, sub domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			account_id, plan, status, billing_period, expires_at,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, query,
		sub.AccountID,
		string(sub.Plan),
		string(sub.Status),
		string(sub.BillingPeriod),
		sub.ExpiresAt,
		sub.Version,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	return err
}

// CompareAndSwap replaces the whole record if the stored version matches.
func (r *PostgresSubscriptionRepository) CompareAndSwap(ctx context.Context, next domain.Subscription) error {
	query := `
		UPDATE subscriptions
		SET plan = $1, status = $2, billing_period = $3, expires_at = $4,
		    updated_at = $5, version = version + 1
		WHERE account_id = $6 AND version = $7
	`
	tag, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, query,
		string(next.Plan),
		string(next.Status),
		string(next.BillingPeriod),
		next.ExpiresAt,
		next.UpdatedAt,
		next.AccountID,
		next.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaleSubscription
	}
	return nil
}

// FindByAccountID returns the subscription for an account.
func (r *PostgresSubscriptionRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT account_id, plan, status, billing_period, expires_at,
		       version, created_at, updated_at
		FROM subscriptions
		WHERE account_id = $1
	`
	var (
		sub                  domain.Subscription
		plan, status, period string
	)
	err := sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx, query, accountID).Scan(
		&sub.AccountID, &plan, &status, &period, &sub.ExpiresAt,
		&sub.Version, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	sub.Plan = domain.PlanID(plan)
	sub.Status = domain.SubscriptionStatus(status)
	sub.BillingPeriod = domain.BillingPeriod(period)
	return &sub, nil
}

// DeleteByAccountID removes the account's subscription, if any.
func (r *PostgresSubscriptionRepository) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `DELETE FROM subscriptions WHERE account_id = $1`, accountID)
	return err
}

var _ domain.SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)

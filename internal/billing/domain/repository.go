package domain

import (
	"context"

	"github.com/google/uuid"
)

// SubscriptionRepository defines access for subscription persistence.
// FindByAccountID returns nil, nil when the account has no subscription.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription Subscription) error
	CompareAndSwap(ctx context.Context, next Subscription) error
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*Subscription, error)
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error
}

package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/google/uuid"
)

// Dashboard is the account summary shown on the subscription page.
type Dashboard struct {
	AccountID    uuid.UUID
	Plan         domain.Plan
	Status       domain.SubscriptionStatus
	Period       domain.BillingPeriod
	ExpiresAt    time.Time
	Countdown    domain.Countdown
	Progress     float64
	Capabilities domain.Capabilities
	At           time.Time
}

// Service answers subscription and entitlement queries.
type Service struct {
	subscriptions domain.SubscriptionRepository
	logger        *slog.Logger
}

// NewService creates a new billing service.
func NewService(subscriptions domain.SubscriptionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{subscriptions: subscriptions, logger: logger}
}

// Plans returns the plan catalog in tier order.
func (s *Service) Plans() []domain.Plan {
	return domain.Plans()
}

// GetSubscription returns the account's subscription.
func (s *Service) GetSubscription(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error) {
	sub, err := s.subscriptions.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrSubscriptionNotFound
	}
	return sub, nil
}

// Entitlements resolves what the caller may use. A nil account is an
// anonymous visitor. Expired subscriptions keep their plan's capabilities.
func (s *Service) Entitlements(ctx context.Context, accountID *uuid.UUID) (domain.Capabilities, error) {
	if accountID == nil {
		return domain.AnonymousCapabilities(), nil
	}
	sub, err := s.GetSubscription(ctx, *accountID)
	if err != nil {
		return domain.Capabilities{}, err
	}
	return domain.Resolve(sub.Plan)
}

// Dashboard builds the summary for the account at the given instant.
func (s *Service) Dashboard(ctx context.Context, accountID uuid.UUID, now time.Time) (Dashboard, error) {
	sub, err := s.GetSubscription(ctx, accountID)
	if err != nil {
		return Dashboard{}, err
	}
	return BuildDashboard(*sub, now)
}

// BuildDashboard derives the dashboard view from a subscription snapshot.
func BuildDashboard(sub domain.Subscription, now time.Time) (Dashboard, error) {
	plan, err := domain.PlanByID(sub.Plan)
	if err != nil {
		return Dashboard{}, err
	}
	caps, err := domain.Resolve(sub.Plan)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		AccountID:    sub.AccountID,
		Plan:         plan,
		Status:       sub.EffectiveStatus(now),
		Period:       sub.BillingPeriod,
		ExpiresAt:    sub.ExpiresAt,
		Countdown:    sub.Countdown(now),
		Progress:     sub.Progress(now),
		Capabilities: caps,
		At:           now,
	}, nil
}

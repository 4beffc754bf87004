package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/consulta/internal/shared/domain"
)

const (
	AggregateType = "Subscription"

	RoutingKeySubscriptionStarted   = "billing.subscription.started"
	RoutingKeySubscriptionActivated = "billing.subscription.activated"
)

// SubscriptionStarted is emitted when the registration trial begins.
type SubscriptionStarted struct {
	sharedDomain.BaseEvent
	Plan      string    `json:"plan"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSubscriptionStarted creates a SubscriptionStarted event.
func NewSubscriptionStarted(sub Subscription) *SubscriptionStarted {
	return &SubscriptionStarted{
		BaseEvent: sharedDomain.NewBaseEvent(sub.AccountID, AggregateType, RoutingKeySubscriptionStarted),
		Plan:      string(sub.Plan),
		ExpiresAt: sub.ExpiresAt,
	}
}

// SubscriptionStartedPayload is the wire form consumers decode.
type SubscriptionStartedPayload struct {
	Plan      string    `json:"plan"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SubscriptionActivated is emitted after a successful checkout.
type SubscriptionActivated struct {
	sharedDomain.BaseEvent
	Plan          string    `json:"plan"`
	PreviousPlan  string    `json:"previous_plan"`
	BillingPeriod string    `json:"billing_period"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Reference     string    `json:"reference"`
	Last4         string    `json:"last4"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// NewSubscriptionActivated creates a SubscriptionActivated event.
func NewSubscriptionActivated(previous, next Subscription, receipt Receipt) *SubscriptionActivated {
	return &SubscriptionActivated{
		BaseEvent:     sharedDomain.NewBaseEvent(next.AccountID, AggregateType, RoutingKeySubscriptionActivated),
		Plan:          string(next.Plan),
		PreviousPlan:  string(previous.Plan),
		BillingPeriod: string(next.BillingPeriod),
		Amount:        receipt.Amount,
		Currency:      receipt.Currency,
		Reference:     receipt.Reference,
		Last4:         receipt.Last4,
		ExpiresAt:     next.ExpiresAt,
	}
}

// SubscriptionActivatedPayload is the wire form consumers decode.
type SubscriptionActivatedPayload struct {
	Plan          string    `json:"plan"`
	PreviousPlan  string    `json:"previous_plan"`
	BillingPeriod string    `json:"billing_period"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Reference     string    `json:"reference"`
	Last4         string    `json:"last4"`
	ExpiresAt     time.Time `json:"expires_at"`
}

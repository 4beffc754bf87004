// Package subscribers reacts to billing events delivered by the event bus.
package subscribers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/mail"
	"github.com/google/uuid"
)

// Contact is where account mail goes.
type Contact struct {
	Email string
	Name  string
}

// ContactLookup finds the mail contact of an account. It returns nil when
// the account no longer exists.
type ContactLookup interface {
	Contact(ctx context.Context, accountID uuid.UUID) (*Contact, error)
}

// Mailer sends billing mail.
type Mailer interface {
	SendWelcome(ctx context.Context, to, name, plan string) error
	SendReceipt(ctx context.Context, to string, receipt mail.Receipt) error
}

// ReceiptSubscriber mails a welcome when a trial starts and a receipt when
// a checkout activates a plan.
type ReceiptSubscriber struct {
	contacts ContactLookup
	mailer   Mailer
	logger   *slog.Logger
}

// NewReceiptSubscriber creates a new ReceiptSubscriber.
func NewReceiptSubscriber(contacts ContactLookup, mailer Mailer, logger *slog.Logger) *ReceiptSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReceiptSubscriber{contacts: contacts, mailer: mailer, logger: logger}
}

// EventTypes returns the event types this subscriber handles.
func (s *ReceiptSubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeySubscriptionStarted,
		domain.RoutingKeySubscriptionActivated,
	}
}

// Handle processes a billing event.
func (s *ReceiptSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	contact, err := s.contacts.Contact(ctx, event.AggregateID)
	if err != nil {
		return fmt.Errorf("lookup contact: %w", err)
	}
	if contact == nil {
		s.logger.Debug("account gone, skipping mail",
			"routing_key", event.RoutingKey,
			"account_id", event.AggregateID,
		)
		return nil
	}

	switch event.RoutingKey {
	case domain.RoutingKeySubscriptionStarted:
		return s.handleStarted(ctx, contact, event)
	case domain.RoutingKeySubscriptionActivated:
		return s.handleActivated(ctx, contact, event)
	default:
		return nil
	}
}

func (s *ReceiptSubscriber) handleStarted(ctx context.Context, contact *Contact, event *eventbus.ConsumedEvent) error {
	var payload domain.SubscriptionStartedPayload
	if err := event.DecodePayload(&payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return s.mailer.SendWelcome(ctx, contact.Email, contact.Name, planName(payload.Plan))
}

func (s *ReceiptSubscriber) handleActivated(ctx context.Context, contact *Contact, event *eventbus.ConsumedEvent) error {
	var payload domain.SubscriptionActivatedPayload
	if err := event.DecodePayload(&payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	err := s.mailer.SendReceipt(ctx, contact.Email, mail.Receipt{
		Name:      contact.Name,
		Plan:      planName(payload.Plan),
		Period:    payload.BillingPeriod,
		Amount:    payload.Amount,
		Currency:  payload.Currency,
		Reference: payload.Reference,
		Last4:     payload.Last4,
		ExpiresAt: payload.ExpiresAt,
	})
	if err != nil {
		return err
	}
	s.logger.Info("receipt sent", "account_id", event.AggregateID, "reference", payload.Reference)
	return nil
}

func planName(id string) string {
	plan, err := domain.PlanByID(domain.PlanID(id))
	if err != nil {
		return id
	}
	return plan.Name
}

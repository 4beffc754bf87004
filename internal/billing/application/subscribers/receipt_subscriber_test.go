package subscribers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/consulta/internal/billing/application/subscribers"
	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	sharedDomain "github.com/felixgeelhaar/consulta/internal/shared/domain"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/mail"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContacts struct {
	contacts map[uuid.UUID]*subscribers.Contact
	err      error
}

func (f *fakeContacts) Contact(_ context.Context, id uuid.UUID) (*subscribers.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.contacts[id], nil
}

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// consumed runs an event through the outbox envelope, as the worker sees it.
func consumed(t *testing.T, event sharedDomain.DomainEvent) *eventbus.ConsumedEvent {
	t.Helper()
	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)
	body, err := msg.Envelope()
	require.NoError(t, err)
	var out eventbus.ConsumedEvent
	require.NoError(t, json.Unmarshal(body, &out))
	return &out
}

func setup(t *testing.T) (*subscribers.ReceiptSubscriber, *fakeContacts, *[]mail.Message, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	contacts := &fakeContacts{contacts: map[uuid.UUID]*subscribers.Contact{
		id: {Email: "ada@example.com", Name: "Ada Lovelace"},
	}}
	var sent []mail.Message
	mailer := mail.NewLogMailer(nil).OnSend(func(m mail.Message) { sent = append(sent, m) })
	return subscribers.NewReceiptSubscriber(contacts, mailer, nil), contacts, &sent, id
}

func TestReceiptSubscriber_EventTypes(t *testing.T) {
	sub, _, _, _ := setup(t)
	assert.ElementsMatch(t, []string{
		domain.RoutingKeySubscriptionStarted,
		domain.RoutingKeySubscriptionActivated,
	}, sub.EventTypes())
}

func TestReceiptSubscriber_Welcome(t *testing.T) {
	sub, _, sent, id := setup(t)
	trial, err := domain.NewTrial(id, domain.PlanUserPremium, t0)
	require.NoError(t, err)

	require.NoError(t, sub.Handle(context.Background(), consumed(t, domain.NewSubscriptionStarted(trial))))

	require.Len(t, *sent, 1)
	assert.Equal(t, "ada@example.com", (*sent)[0].To)
	assert.Contains(t, (*sent)[0].Body, "User Premium")
}

func TestReceiptSubscriber_Receipt(t *testing.T) {
	sub, _, sent, id := setup(t)
	trial := domain.NewTrialSubscription(id, t0)
	next, err := trial.ApplyCheckout(domain.PlanBusiness, domain.BillingAnnual, t0)
	require.NoError(t, err)
	receipt := domain.Receipt{Reference: "pi_123", Amount: 576, Currency: "eur", Last4: "4242"}

	require.NoError(t, sub.Handle(context.Background(), consumed(t, domain.NewSubscriptionActivated(trial, next, receipt))))

	require.Len(t, *sent, 1)
	body := (*sent)[0].Body
	assert.Contains(t, body, "Business (annual)")
	assert.Contains(t, body, "576.00 eur")
	assert.Contains(t, body, "pi_123")
	assert.Contains(t, body, "Ada Lovelace")
}

func TestReceiptSubscriber_SkipsDeletedAccount(t *testing.T) {
	sub, _, sent, _ := setup(t)
	trial := domain.NewTrialSubscription(uuid.New(), t0)

	require.NoError(t, sub.Handle(context.Background(), consumed(t, domain.NewSubscriptionStarted(trial))))
	assert.Empty(t, *sent)
}

func TestReceiptSubscriber_LookupError(t *testing.T) {
	sub, contacts, _, id := setup(t)
	contacts.err = errors.New("db down")

	err := sub.Handle(context.Background(), consumed(t, domain.NewSubscriptionStarted(domain.NewTrialSubscription(id, t0))))
	assert.Error(t, err)
}

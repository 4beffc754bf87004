package domain_test

import (
	"testing"

	"github.com/felixgeelhaar/consulta/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type account struct {
	domain.BaseAggregateRoot
}

type accountRegistered struct {
	domain.BaseEvent
}

func TestBaseAggregateRoot_QueuesEventsUntilCleared(t *testing.T) {
	acc := &account{BaseAggregateRoot: domain.NewBaseAggregateRoot()}
	assert.NotEqual(t, uuid.Nil, acc.ID())
	assert.Empty(t, acc.DomainEvents())
	assert.Zero(t, acc.Version())

	acc.AddDomainEvent(accountRegistered{BaseEvent: domain.NewBaseEvent(acc.ID(), "Account", "identity.account.registered")})
	assert.Len(t, acc.DomainEvents(), 1)
	assert.Equal(t, "identity.account.registered", acc.DomainEvents()[0].RoutingKey())
	assert.Equal(t, acc.ID(), acc.DomainEvents()[0].AggregateID())

	acc.ClearDomainEvents()
	assert.Empty(t, acc.DomainEvents())
}

func TestRehydrateBaseAggregateRoot(t *testing.T) {
	fresh := domain.NewBaseEntity()
	base := domain.RehydrateBaseEntity(fresh.ID(), fresh.CreatedAt(), fresh.UpdatedAt())
	acc := &account{BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(base, 4)}

	assert.Equal(t, 4, acc.Version())
	assert.Equal(t, fresh.ID(), acc.ID())
	assert.Empty(t, acc.DomainEvents())
}

func TestBaseEntity_Equals(t *testing.T) {
	a := domain.NewBaseEntity()
	b := domain.RehydrateBaseEntity(a.ID(), a.CreatedAt(), a.UpdatedAt())
	c := domain.NewBaseEntity()

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))
}

func TestBaseEntity_Touch(t *testing.T) {
	e := domain.NewBaseEntity()
	before := e.UpdatedAt()
	e.Touch()
	assert.False(t, e.UpdatedAt().Before(before))
	assert.Equal(t, before, e.CreatedAt())
}

func TestBaseEvent_Metadata(t *testing.T) {
	event := domain.NewBaseEvent(uuid.New(), "Subscription", "billing.subscription.started")
	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.False(t, event.OccurredAt().IsZero())
	assert.Equal(t, "Subscription", event.AggregateType())

	accountID := uuid.New()
	event.SetMetadata(domain.EventMetadata{AccountID: accountID})
	assert.Equal(t, accountID, event.Metadata().AccountID)
}

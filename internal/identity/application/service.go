// Package application implements the account use cases: registration,
// verification, login, profile changes, password reset and deletion.
package application

import (
	"context"
	"log/slog"
	"time"

	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/consulta/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/consulta/internal/shared/domain"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// Deps groups the collaborators of Service.
type Deps struct {
	Accounts      domain.AccountRepository
	Subscriptions billingDomain.SubscriptionRepository
	Outbox        outbox.Repository
	UoW           sharedApplication.UnitOfWork
	Hasher        PasswordHasher
	Tokens        TokenStore
	Sessions      SessionIssuer
	Mailer        Mailer
	Logger        *slog.Logger
}

// Service handles account commands.
type Service struct {
	accounts      domain.AccountRepository
	subscriptions billingDomain.SubscriptionRepository
	outboxRepo    outbox.Repository
	uow           sharedApplication.UnitOfWork
	hasher        PasswordHasher
	tokens        TokenStore
	sessions      SessionIssuer
	mailer        Mailer
	now           func() time.Time
	logger        *slog.Logger
}

// NewService creates a new account Service.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts:      deps.Accounts,
		subscriptions: deps.Subscriptions,
		outboxRepo:    deps.Outbox,
		uow:           deps.UoW,
		hasher:        deps.Hasher,
		tokens:        deps.Tokens,
		sessions:      deps.Sessions,
		mailer:        deps.Mailer,
		now:           time.Now,
		logger:        logger,
	}
}

// WithClock replaces the service's clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetAccount loads an account, mapping a missing row to ErrAccountNotFound.
func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// saveWithEvents persists the account and its pending events in the
// current transaction.
func (s *Service) saveWithEvents(ctx context.Context, account *domain.Account) error {
	if err := s.accounts.Save(ctx, account); err != nil {
		return err
	}
	return s.recordEvents(ctx, account.ID(), account.DomainEvents())
}

func (s *Service) recordEvents(ctx context.Context, accountID uuid.UUID, events []sharedDomain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(accountID))
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	return s.outboxRepo.SaveBatch(ctx, msgs)
}

// Package application serves support levels and tickets.
package application

import (
	"context"
	"log/slog"
	"time"

	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
	sharedApplication "github.com/felixgeelhaar/consulta/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/consulta/internal/shared/domain"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/consulta/internal/support/domain"
	"github.com/google/uuid"
)

// EntitlementResolver answers what an account, or an anonymous visitor, may use.
type EntitlementResolver interface {
	Entitlements(ctx context.Context, accountID *uuid.UUID) (billingDomain.Capabilities, error)
}

// OpenTicketCommand contains the data needed to open a ticket.
type OpenTicketCommand struct {
	AccountID   uuid.UUID
	Subject     string
	Category    string
	Priority    string
	Description string
}

// Service handles support queries and tickets.
type Service struct {
	entitlements EntitlementResolver
	tickets      domain.TicketRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	now          func() time.Time
	logger       *slog.Logger
}

// NewService creates a new support Service.
func NewService(
	entitlements EntitlementResolver,
	tickets domain.TicketRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		entitlements: entitlements,
		tickets:      tickets,
		outboxRepo:   outboxRepo,
		uow:          uow,
		now:          time.Now,
		logger:       logger,
	}
}

// WithClock replaces the service's clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Level returns the support level the caller is entitled to.
func (s *Service) Level(ctx context.Context, accountID *uuid.UUID) (domain.Level, error) {
	caps, err := s.entitlements.Entitlements(ctx, accountID)
	if err != nil {
		return domain.Level{}, err
	}
	return domain.LevelFor(caps.SupportTier), nil
}

// OpenTicket stores a ticket and its TicketOpened event together.
func (s *Service) OpenTicket(ctx context.Context, cmd OpenTicketCommand) (*domain.Ticket, error) {
	ticket, err := domain.NewTicket(cmd.AccountID, cmd.Subject, cmd.Category, cmd.Priority, cmd.Description, s.now())
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.tickets.Save(txCtx, ticket); err != nil {
			return err
		}
		events := []sharedDomain.DomainEvent{domain.NewTicketOpened(ticket)}
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(cmd.AccountID))
		msgs, err := outbox.NewMessages(events)
		if err != nil {
			return err
		}
		return s.outboxRepo.SaveBatch(txCtx, msgs)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("support ticket opened",
		"ticket_id", ticket.ID,
		"account_id", ticket.AccountID,
		"category", ticket.Category,
		"priority", ticket.Priority,
	)
	return ticket, nil
}

// ListTickets returns an account's tickets, newest first.
func (s *Service) ListTickets(ctx context.Context, accountID uuid.UUID) ([]*domain.Ticket, error) {
	return s.tickets.ListByAccount(ctx, accountID)
}

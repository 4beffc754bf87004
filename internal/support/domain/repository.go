package domain

import (
	"context"

	"github.com/google/uuid"
)

// TicketRepository persists support tickets.
type TicketRepository interface {
	Save(ctx context.Context, ticket *Ticket) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Ticket, error)
}

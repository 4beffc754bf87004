package domain

import (
	sharedDomain "github.com/felixgeelhaar/consulta/internal/shared/domain"
)

const (
	AggregateType          = "SupportTicket"
	RoutingKeyTicketOpened = "support.ticket.opened"
)

// TicketOpened is emitted when a ticket is created.
type TicketOpened struct {
	sharedDomain.BaseEvent
	TicketID string   `json:"ticket_id"`
	Account  string   `json:"account_id"`
	Subject  string   `json:"subject"`
	Category Category `json:"category"`
	Priority Priority `json:"priority"`
}

// NewTicketOpened creates a TicketOpened event.
func NewTicketOpened(t *Ticket) *TicketOpened {
	return &TicketOpened{
		BaseEvent: sharedDomain.NewBaseEvent(t.ID, AggregateType, RoutingKeyTicketOpened),
		TicketID:  t.ID.String(),
		Account:   t.AccountID.String(),
		Subject:   t.Subject,
		Category:  t.Category,
		Priority:  t.Priority,
	}
}

package application

import (
	"github.com/felixgeelhaar/consulta/internal/shared/domain"
	"github.com/google/uuid"
)

// NewEventMetadata scopes the events of one command to the acting account.
// Each command starts its own correlation chain, so the causation id is the
// correlation id.
func NewEventMetadata(accountID uuid.UUID) domain.EventMetadata {
	id := uuid.New()
	return domain.EventMetadata{
		CorrelationID: id,
		CausationID:   id,
		AccountID:     accountID,
	}
}

// ApplyEventMetadata stamps metadata on every event that accepts it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if e, ok := event.(interface{ SetMetadata(domain.EventMetadata) }); ok {
			e.SetMetadata(metadata)
		}
	}
}

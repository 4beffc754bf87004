package domain

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account persistence.
// Finders return nil, nil when nothing matches.
type AccountRepository interface {
	Save(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email Email) (*Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

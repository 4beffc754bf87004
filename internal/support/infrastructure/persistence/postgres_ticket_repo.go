package persistence

import (
	"context"

	sharedPersistence "github.com/felixgeelhaar/consulta/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/consulta/internal/support/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTicketRepository stores tickets in PostgreSQL.
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository.
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

// Save inserts a ticket.
func (r *PostgresTicketRepository) Save(ctx context.Context, t *domain.Ticket) error {
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `
		INSERT INTO support_tickets (id, account_id, subject, category, priority, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		t.ID, t.AccountID, t.Subject,
		string(t.Category), string(t.Priority),
		t.Description, string(t.Status), t.CreatedAt,
	)
	return err
}

// ListByAccount returns the account's tickets, newest first.
func (r *PostgresTicketRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Ticket, error) {
	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx, `
		SELECT id, account_id, subject, category, priority, description, status, created_at
		FROM support_tickets
		WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		var (
			t                     domain.Ticket
			category, prio, state string
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Subject, &category, &prio, &t.Description, &state, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Category = domain.Category(category)
		t.Priority = domain.Priority(prio)
		t.Status = domain.Status(state)
		tickets = append(tickets, &t)
	}
	return tickets, rows.Err()
}

var _ domain.TicketRepository = (*PostgresTicketRepository)(nil)

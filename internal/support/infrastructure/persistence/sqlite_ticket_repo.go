package persistence

import (
	"context"
	"database/sql"

	sharedPersistence "github.com/felixgeelhaar/consulta/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/consulta/internal/support/domain"
	"github.com/google/uuid"
)

// SQLiteTicketRepository stores tickets in SQLite.
type SQLiteTicketRepository struct {
	dbConn *sql.DB
}

// NewSQLiteTicketRepository creates a new SQLiteTicketRepository.
func NewSQLiteTicketRepository(dbConn *sql.DB) *SQLiteTicketRepository {
	return &SQLiteTicketRepository{dbConn: dbConn}
}

func (r *SQLiteTicketRepository) getDB(ctx context.Context) interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
} {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.dbConn
}

// Save inserts a ticket.
func (r *SQLiteTicketRepository) Save(ctx context.Context, t *domain.Ticket) error {
	_, err := r.getDB(ctx).ExecContext(ctx, `
		INSERT INTO support_tickets (id, account_id, subject, category, priority, description, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID.String(),
		t.AccountID.String(),
		t.Subject,
		string(t.Category),
		string(t.Priority),
		t.Description,
		string(t.Status),
		sharedPersistence.FormatSQLiteTime(t.CreatedAt),
	)
	return err
}

// ListByAccount returns the account's tickets, newest first.
func (r *SQLiteTicketRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Ticket, error) {
	rows, err := r.getDB(ctx).QueryContext(ctx, `
		SELECT id, account_id, subject, category, priority, description, status, created_at
		FROM support_tickets
		WHERE account_id = ?
		ORDER BY created_at DESC
	`, accountID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		var (
			t                     domain.Ticket
			id, account, created  string
			category, prio, state string
		)
		if err := rows.Scan(&id, &account, &t.Subject, &category, &prio, &t.Description, &state, &created); err != nil {
			return nil, err
		}
		if t.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if t.AccountID, err = uuid.Parse(account); err != nil {
			return nil, err
		}
		if t.CreatedAt, err = sharedPersistence.ParseSQLiteTime(created); err != nil {
			return nil, err
		}
		t.Category = domain.Category(category)
		t.Priority = domain.Priority(prio)
		t.Status = domain.Status(state)
		tickets = append(tickets, &t)
	}
	return tickets, rows.Err()
}

var _ domain.TicketRepository = (*SQLiteTicketRepository)(nil)

package persistence

import (
	"context"
	"time"

	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/consulta/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresAccountColumns = `id, email, name, surname, password_hash, email_verified, version, created_at, updated_at`

// PostgresAccountRepository handles persistence for accounts using PostgreSQL.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository.
func NewPostgresAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// Save upserts the account.
func (r *PostgresAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + postgresAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			surname = EXCLUDED.surname,
			password_hash = EXCLUDED.password_hash,
			email_verified = EXCLUDED.email_verified,
			version = accounts.version + 1,
			updated_at = EXCLUDED.updated_at
	`
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, query,
		account.ID(),
		account.Email().String(),
		account.Name().String(),
		account.Surname(),
		account.PasswordHash(),
		account.EmailVerified(),
		account.Version(),
		account.CreatedAt(),
		account.UpdatedAt(),
	)
	return mapAccountError(err)
}

// FindByID retrieves an account by its ID.
func (r *PostgresAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+postgresAccountColumns+` FROM accounts WHERE id = $1`, id)
	return scanPostgresAccount(row)
}

// FindByEmail retrieves an account by its normalized email.
func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.Account, error) {
	row := sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+postgresAccountColumns+` FROM accounts WHERE email = $1`, email.String())
	return scanPostgresAccount(row)
}

// Delete removes an account. The subscription and tickets cascade.
func (r *PostgresAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

func scanPostgresAccount(row pgx.Row) (*domain.Account, error) {
	var (
		id                         uuid.UUID
		email, name, surname, hash string
		verified                   bool
		version                    int
		createdAt, updatedAt       time.Time
	)
	err := row.Scan(&id, &email, &name, &surname, &hash, &verified, &version, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return rehydrate(id, email, name, surname, hash, verified, version, createdAt, updatedAt)
}

var _ domain.AccountRepository = (*PostgresAccountRepository)(nil)

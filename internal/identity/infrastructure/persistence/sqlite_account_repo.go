package persistence

import (
	"context"
	"database/sql"

	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/consulta/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

const sqliteAccountColumns = `id, email, name, surname, password_hash, email_verified, version, created_at, updated_at`

// SQLiteAccountRepository handles persistence for accounts using SQLite.
type SQLiteAccountRepository struct {
	dbConn *sql.DB
}

// NewSQLiteAccountRepository creates a new SQLiteAccountRepository.
func NewSQLiteAccountRepository(dbConn *sql.DB) *SQLiteAccountRepository {
	return &SQLiteAccountRepository{dbConn: dbConn}
}

func (r *SQLiteAccountRepository) getDB(ctx context.Context) interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
} {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.dbConn
}

// Save updates the account row, inserting it when it does not exist yet.
func (r *SQLiteAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	exec := r.getDB(ctx)

	result, err := exec.ExecContext(ctx, `
		UPDATE accounts
		SET email = ?, name = ?, surname = ?, password_hash = ?,
		    email_verified = ?, version = version + 1, updated_at = ?
		WHERE id = ?
	`,
		account.Email().String(),
		account.Name().String(),
		account.Surname(),
		account.PasswordHash(),
		boolToInt(account.EmailVerified()),
		sharedPersistence.FormatSQLiteTime(account.UpdatedAt()),
		account.ID().String(),
	)
	if err != nil {
		return mapAccountError(err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n > 0 {
		return nil
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO accounts (`+sqliteAccountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		account.ID().String(),
		account.Email().String(),
		account.Name().String(),
		account.Surname(),
		account.PasswordHash(),
		boolToInt(account.EmailVerified()),
		account.Version(),
		sharedPersistence.FormatSQLiteTime(account.CreatedAt()),
		sharedPersistence.FormatSQLiteTime(account.UpdatedAt()),
	)
	return mapAccountError(err)
}

// FindByID retrieves an account by its ID.
func (r *SQLiteAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.getDB(ctx).QueryRowContext(ctx,
		`SELECT `+sqliteAccountColumns+` FROM accounts WHERE id = ?`, id.String())
	return scanSQLiteAccount(row)
}

// FindByEmail retrieves an account by its normalized email.
func (r *SQLiteAccountRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.Account, error) {
	row := r.getDB(ctx).QueryRowContext(ctx,
		`SELECT `+sqliteAccountColumns+` FROM accounts WHERE email = ?`, email.String())
	return scanSQLiteAccount(row)
}

// Delete removes an account. The subscription and tickets cascade.
func (r *SQLiteAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.getDB(ctx).ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id.String())
	return err
}

func scanSQLiteAccount(row *sql.Row) (*domain.Account, error) {
	var (
		idStr, email, name, surname, hash string
		createdAt, updatedAt              string
		verified, version                 int
	)
	err := row.Scan(&idStr, &email, &name, &surname, &hash, &verified, &version, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	created, err := sharedPersistence.ParseSQLiteTime(createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := sharedPersistence.ParseSQLiteTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return rehydrate(id, email, name, surname, hash, verified != 0, version, created, updated)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ domain.AccountRepository = (*SQLiteAccountRepository)(nil)

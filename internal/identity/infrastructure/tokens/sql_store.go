package tokens

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/felixgeelhaar/consulta/internal/identity/application"
	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	sharedPersistence "github.com/felixgeelhaar/consulta/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Only a hash of each token is stored, so a copied database cannot be used
// to verify or reset someone else's account.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SQLiteStore keeps tokens in the one_time_tokens table. It is the default
// when Redis is not configured, so a code issued by one CLI run can be
// consumed by the next.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a store on a migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// WithClock replaces the store's clock.
func (s *SQLiteStore) WithClock(now func() time.Time) *SQLiteStore {
	s.now = now
	return s
}

// Issue stores a new random token for the account and drops expired rows.
func (s *SQLiteStore) Issue(ctx context.Context, purpose application.TokenPurpose, accountID uuid.UUID, ttl time.Duration) (string, error) {
	now := s.now()
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM one_time_tokens WHERE expires_at <= ?`,
		sharedPersistence.FormatSQLiteTime(now)); err != nil {
		return "", err
	}

	token := rand.Text()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO one_time_tokens (token_hash, purpose, account_id, expires_at)
		VALUES (?, ?, ?, ?)
	`,
		hashToken(token),
		string(purpose),
		accountID.String(),
		sharedPersistence.FormatSQLiteTime(now.Add(ttl)),
	)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Consume deletes the token and returns its account in one statement, so a
// token can succeed at most once.
func (s *SQLiteStore) Consume(ctx context.Context, purpose application.TokenPurpose, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, domain.ErrInvalidToken
	}

	var account, expires string
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM one_time_tokens
		WHERE token_hash = ? AND purpose = ?
		RETURNING account_id, expires_at
	`, hashToken(token), string(purpose)).Scan(&account, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, domain.ErrInvalidToken
	}
	if err != nil {
		return uuid.Nil, err
	}

	expiresAt, err := sharedPersistence.ParseSQLiteTime(expires)
	if err != nil || !s.now().Before(expiresAt) {
		return uuid.Nil, domain.ErrInvalidToken
	}
	id, err := uuid.Parse(account)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}
	return id, nil
}

// PostgresStore is the PostgreSQL counterpart of SQLiteStore.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore creates a store on a migrated pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

// Issue stores a new random token for the account and drops expired rows.
func (s *PostgresStore) Issue(ctx context.Context, purpose application.TokenPurpose, accountID uuid.UUID, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	exec := sharedPersistence.Executor(ctx, s.pool)
	if _, err := exec.Exec(ctx, `DELETE FROM one_time_tokens WHERE expires_at <= $1`, now); err != nil {
		return "", err
	}

	token := rand.Text()
	_, err := exec.Exec(ctx, `
		INSERT INTO one_time_tokens (token_hash, purpose, account_id, expires_at)
		VALUES ($1, $2, $3, $4)
	`, hashToken(token), string(purpose), accountID, now.Add(ttl))
	if err != nil {
		return "", err
	}
	return token, nil
}

// Consume deletes the token and returns its account in one statement.
func (s *PostgresStore) Consume(ctx context.Context, purpose application.TokenPurpose, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, domain.ErrInvalidToken
	}

	var (
		id        uuid.UUID
		expiresAt time.Time
	)
	err := sharedPersistence.Executor(ctx, s.pool).QueryRow(ctx, `
		DELETE FROM one_time_tokens
		WHERE token_hash = $1 AND purpose = $2
		RETURNING account_id, expires_at
	`, hashToken(token), string(purpose)).Scan(&id, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, domain.ErrInvalidToken
	}
	if err != nil {
		return uuid.Nil, err
	}
	if !s.now().Before(expiresAt) {
		return uuid.Nil, domain.ErrInvalidToken
	}
	return id, nil
}

var (
	_ application.TokenStore = (*SQLiteStore)(nil)
	_ application.TokenStore = (*PostgresStore)(nil)
)

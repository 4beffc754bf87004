package application

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenPurpose scopes a one-time token to a single flow.
type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "verify"
	PurposePasswordReset TokenPurpose = "reset"
)

const (
	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = time.Hour
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenStore issues single-use tokens bound to an account.
// Consume returns ErrInvalidToken when the token is unknown, expired or
// issued for another purpose.
type TokenStore interface {
	Issue(ctx context.Context, purpose TokenPurpose, accountID uuid.UUID, ttl time.Duration) (string, error)
	Consume(ctx context.Context, purpose TokenPurpose, token string) (uuid.UUID, error)
}

// Claims are the verified contents of a session token.
type Claims struct {
	AccountID uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionIssuer signs and verifies session tokens.
type SessionIssuer interface {
	Issue(accountID uuid.UUID, email string) (string, error)
	Parse(token string) (*Claims, error)
}

// Mailer delivers account emails.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, token string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

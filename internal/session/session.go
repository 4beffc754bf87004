// Package session carries the signed-in account through a request and keeps
// the CLI's current session on disk.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session identifies the signed-in account.
type Session struct {
	Token     string    `json:"token"`
	AccountID uuid.UUID `json:"account_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
}

type contextKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session in ctx, or nil for an anonymous visitor.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// AccountID returns the signed-in account id, or nil when anonymous.
func AccountID(ctx context.Context) *uuid.UUID {
	s := FromContext(ctx)
	if s == nil {
		return nil
	}
	id := s.AccountID
	return &id
}

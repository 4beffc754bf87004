package session

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/consulta/internal/identity/application"
)

// Store loads and saves the current session.
type Store interface {
	Load() (*Session, error)
	Save(*Session) error
	Delete() error
}

// Resolver turns the stored token into a verified session.
type Resolver struct {
	store  Store
	issuer application.SessionIssuer
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(store Store, issuer application.SessionIssuer, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, issuer: issuer, logger: logger}
}

// Resolve returns the verified session, or nil for an anonymous visitor.
// A stored token that no longer verifies is discarded.
func (r *Resolver) Resolve(ctx context.Context) (*Session, error) {
	stored, err := r.store.Load()
	if err != nil || stored == nil {
		return nil, err
	}

	claims, err := r.issuer.Parse(stored.Token)
	if err != nil {
		r.logger.DebugContext(ctx, "discarding stored session", "error", err)
		return nil, r.store.Delete()
	}
	return &Session{
		Token:     stored.Token,
		AccountID: claims.AccountID,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt,
	}, nil
}

// Attach resolves the session and stores it in ctx.
func (r *Resolver) Attach(ctx context.Context) (context.Context, error) {
	sess, err := r.Resolve(ctx)
	if err != nil {
		return ctx, err
	}
	if sess == nil {
		return ctx, nil
	}
	return WithSession(ctx, sess), nil
}

package cli

import (
	"context"
	"errors"
	"time"

	billingApp "github.com/felixgeelhaar/consulta/internal/billing/application"
	"github.com/felixgeelhaar/consulta/internal/billing/application/commands"
	identityApp "github.com/felixgeelhaar/consulta/internal/identity/application"
	"github.com/felixgeelhaar/consulta/internal/session"
	supportApp "github.com/felixgeelhaar/consulta/internal/support/application"
	"github.com/google/uuid"
)

// ErrNotLoggedIn is returned by commands that need an account.
var ErrNotLoggedIn = errors.New("not logged in; run `consulta account login` first")

// ErrNoDatabase is returned when the container could not be built.
var ErrNoDatabase = errors.New("this command requires a database connection")

// App holds the CLI application dependencies.
type App struct {
	Identity *identityApp.Service
	Billing  *billingApp.Service
	Checkout *commands.CheckoutHandler
	Watcher  *billingApp.Watcher
	Support  *supportApp.Service

	Sessions session.Store
	Resolver *session.Resolver
	Issuer   identityApp.SessionIssuer

	// Flush runs after a command so queued events reach local subscribers.
	Flush func(ctx context.Context) error

	Now func() time.Time
}

// NewApp creates a new CLI application with the provided services.
func NewApp(
	identity *identityApp.Service,
	billing *billingApp.Service,
	checkout *commands.CheckoutHandler,
	watcher *billingApp.Watcher,
	support *supportApp.Service,
	sessions session.Store,
	resolver *session.Resolver,
	issuer identityApp.SessionIssuer,
) *App {
	return &App{
		Identity: identity,
		Billing:  billing,
		Checkout: checkout,
		Watcher:  watcher,
		Support:  support,
		Sessions: sessions,
		Resolver: resolver,
		Issuer:   issuer,
		Now:      time.Now,
	}
}

// SetFlush sets the post-command hook.
func (a *App) SetFlush(fn func(ctx context.Context) error) {
	a.Flush = fn
}

// Clock returns the current time.
func (a *App) Clock() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// CurrentSession returns the logged-in session, or nil for an anonymous
// visitor.
func (a *App) CurrentSession(ctx context.Context) (*session.Session, error) {
	if a.Resolver == nil {
		return nil, nil
	}
	return a.Resolver.Resolve(ctx)
}

// CurrentAccountID returns the logged-in account id, or nil.
func (a *App) CurrentAccountID(ctx context.Context) (*uuid.UUID, error) {
	sess, err := a.CurrentSession(ctx)
	if err != nil || sess == nil {
		return nil, err
	}
	id := sess.AccountID
	return &id, nil
}

// RequireAccount returns the logged-in account id or ErrNotLoggedIn.
func (a *App) RequireAccount(ctx context.Context) (uuid.UUID, error) {
	id, err := a.CurrentAccountID(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, ErrNotLoggedIn
	}
	return *id, nil
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the global instance or ErrNoDatabase.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, ErrNoDatabase
	}
	return app, nil
}

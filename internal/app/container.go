// Package app wires configuration, storage and services into a Container
// shared by the CLI, the MCP server and the worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	billingApp "github.com/felixgeelhaar/consulta/internal/billing/application"
	"github.com/felixgeelhaar/consulta/internal/billing/application/commands"
	"github.com/felixgeelhaar/consulta/internal/billing/application/subscribers"
	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/felixgeelhaar/consulta/internal/billing/infrastructure/payment"
	identityApp "github.com/felixgeelhaar/consulta/internal/identity/application"
	identityDomain "github.com/felixgeelhaar/consulta/internal/identity/domain"
	"github.com/felixgeelhaar/consulta/internal/identity/infrastructure/security"
	"github.com/felixgeelhaar/consulta/internal/identity/infrastructure/tokens"
	"github.com/felixgeelhaar/consulta/internal/session"
	sharedApplication "github.com/felixgeelhaar/consulta/internal/shared/application"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/mail"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/outbox"
	supportApp "github.com/felixgeelhaar/consulta/internal/support/application"
	supportDomain "github.com/felixgeelhaar/consulta/internal/support/domain"
	"github.com/felixgeelhaar/consulta/pkg/config"
	"github.com/google/uuid"

	_ "github.com/felixgeelhaar/consulta/internal/shared/infrastructure/database/postgres"
	_ "github.com/felixgeelhaar/consulta/internal/shared/infrastructure/database/sqlite"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Repositories
	Accounts      identityDomain.AccountRepository
	Subscriptions billingDomain.SubscriptionRepository
	Tickets       supportDomain.TicketRepository
	OutboxRepo    outbox.Repository
	UnitOfWork    sharedApplication.UnitOfWork

	// Infrastructure adapters
	TokenStore     identityApp.TokenStore
	Hasher         *security.BcryptHasher
	Sessions       *security.JWTIssuer
	Mailer         *mail.LogMailer
	PaymentGateway billingDomain.PaymentGateway
	EventPublisher eventbus.Publisher

	// LocalBus is set when events are delivered in-process instead of
	// through RabbitMQ.
	LocalBus        *eventbus.InProcessEventBus
	OutboxProcessor *outbox.Processor

	// Services
	Identity *identityApp.Service
	Billing  *billingApp.Service
	Checkout *commands.CheckoutHandler
	Watcher  *billingApp.Watcher
	Support  *supportApp.Service

	// Subscribers
	Contacts          subscribers.ContactLookup
	ReceiptSubscriber *subscribers.ReceiptSubscriber

	// CLI session
	SessionStore    *session.FileStore
	SessionResolver *session.Resolver

	closers []io.Closer
}

// NewContainer opens the configured database, applies migrations and wires
// every service.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.initRepositories(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initAdapters(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.initServices()
	if err := c.initEvents(); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("container ready",
		"driver", c.DBDriver,
		"payment_gateway", cfg.PaymentGateway,
		"local_bus", c.LocalBus != nil,
	)
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	driver, err := database.ParseDriver(c.Config.DatabaseDriver)
	if err != nil {
		return err
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     driver,
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.Logger.Info("connected to database", "driver", c.DBDriver)
	return nil
}

func (c *Container) initRepositories(ctx context.Context) error {
	factory := NewRepositoryFactory(c.DBConn)

	c.Logger.Info("running migrations", "driver", c.DBDriver)
	if err := factory.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var err error
	if c.Accounts, err = factory.AccountRepository(); err != nil {
		return fmt.Errorf("failed to create account repository: %w", err)
	}
	if c.Subscriptions, err = factory.SubscriptionRepository(); err != nil {
		return fmt.Errorf("failed to create subscription repository: %w", err)
	}
	if c.Tickets, err = factory.TicketRepository(); err != nil {
		return fmt.Errorf("failed to create ticket repository: %w", err)
	}
	if c.OutboxRepo, err = factory.OutboxRepository(); err != nil {
		return fmt.Errorf("failed to create outbox repository: %w", err)
	}
	if c.UnitOfWork, err = factory.UnitOfWork(); err != nil {
		return fmt.Errorf("failed to create unit of work: %w", err)
	}
	return nil
}

func (c *Container) initAdapters(ctx context.Context) error {
	cfg := c.Config

	// Redis holds one-time codes when configured; otherwise they go to the
	// database so a code mailed by one CLI run is still there for the next.
	if cfg.RedisURL != "" {
		store, err := tokens.NewRedisStoreFromURL(ctx, cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				return fmt.Errorf("failed to connect to Redis: %w", err)
			}
			c.Logger.Warn("Redis not available, storing tokens in the database", "error", err)
		} else {
			c.TokenStore = store
			c.closers = append(c.closers, store)
			c.Logger.Info("connected to Redis")
		}
	}
	if c.TokenStore == nil {
		store, err := NewRepositoryFactory(c.DBConn).TokenStore()
		if err != nil {
			return fmt.Errorf("failed to create token store: %w", err)
		}
		c.TokenStore = store
	}

	issuer, err := security.NewJWTIssuer(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to create session issuer: %w", err)
	}
	c.Sessions = issuer
	c.Hasher = security.NewBcryptHasher(cfg.BcryptCost)
	c.Mailer = mail.NewLogMailer(c.Logger)

	gateway, err := c.newPaymentGateway()
	if err != nil {
		return err
	}
	c.PaymentGateway = gateway

	c.SessionStore = session.NewFileStore(cfg.SessionPath)
	c.SessionResolver = session.NewResolver(c.SessionStore, c.Sessions, c.Logger)
	return nil
}

func (c *Container) newPaymentGateway() (billingDomain.PaymentGateway, error) {
	cfg := c.Config

	var next billingDomain.PaymentGateway
	switch cfg.PaymentGateway {
	case "", "simulated":
		next = payment.NewSimulatedGateway(payment.SimulatedConfig{
			FailureRate: cfg.PaymentFailureRate,
			Delay:       cfg.PaymentDelay,
		}, c.Logger)
	case "stripe":
		if cfg.StripeAPIKey == "" {
			return nil, errors.New("STRIPE_API_KEY is required for the stripe payment gateway")
		}
		next = payment.NewStripeGateway(cfg.StripeAPIKey)
	default:
		return nil, fmt.Errorf("unsupported payment gateway: %s", cfg.PaymentGateway)
	}
	return payment.NewBreakerGateway(next, payment.DefaultBreakerConfig(), c.Logger), nil
}

func (c *Container) initServices() {
	c.Identity = identityApp.NewService(identityApp.Deps{
		Accounts:      c.Accounts,
		Subscriptions: c.Subscriptions,
		Outbox:        c.OutboxRepo,
		UoW:           c.UnitOfWork,
		Hasher:        c.Hasher,
		Tokens:        c.TokenStore,
		Sessions:      c.Sessions,
		Mailer:        c.Mailer,
		Logger:        c.Logger,
	})

	c.Billing = billingApp.NewService(c.Subscriptions, c.Logger)
	c.Watcher = billingApp.NewWatcher(c.Billing)
	c.Checkout = commands.NewCheckoutHandler(
		c.Subscriptions,
		c.OutboxRepo,
		c.PaymentGateway,
		c.UnitOfWork,
		c.Config.StripeCurrency,
		c.Logger,
	)

	c.Support = supportApp.NewService(c.Billing, c.Tickets, c.OutboxRepo, c.UnitOfWork, c.Logger)

	c.Contacts = &accountContacts{accounts: c.Accounts}
	c.ReceiptSubscriber = subscribers.NewReceiptSubscriber(c.Contacts, c.Mailer, c.Logger)
}

// initEvents chooses where relayed outbox messages go. With a broker the
// worker's consumer delivers them; without one an in-process bus hands them
// straight to the subscribers.
func (c *Container) initEvents() error {
	cfg := c.Config

	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
		if err == nil {
			c.EventPublisher = publisher
		} else if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		} else {
			c.Logger.Warn("RabbitMQ not available, delivering events in-process", "error", err)
		}
	}
	if c.EventPublisher == nil {
		c.LocalBus = eventbus.NewInProcessEventBus(c.Logger)
		c.LocalBus.RegisterConsumer(c.ReceiptSubscriber)
		c.EventPublisher = c.LocalBus
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval:     cfg.OutboxPollInterval,
		BatchSize:        cfg.OutboxBatchSize,
		MaxRetries:       cfg.OutboxMaxRetries,
		RetryBackoffBase: outbox.DefaultProcessorConfig().RetryBackoffBase,
		RetryBackoffMax:  outbox.DefaultProcessorConfig().RetryBackoffMax,
	}, c.Logger)
	return nil
}

// DrainOutbox relays pending outbox messages once. Short-lived processes
// call it after a command so local subscribers see the events without a
// running worker. With a broker it is a no-op and the worker relays.
func (c *Container) DrainOutbox(ctx context.Context) error {
	if c.LocalBus == nil || c.OutboxProcessor == nil {
		return nil
	}
	return c.OutboxProcessor.ProcessOnce(ctx)
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.Logger.Warn("error closing resource", "error", err)
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}

// accountContacts resolves mail contacts from the account store.
type accountContacts struct {
	accounts identityDomain.AccountRepository
}

func (a *accountContacts) Contact(ctx context.Context, accountID uuid.UUID) (*subscribers.Contact, error) {
	account, err := a.accounts.FindByID(ctx, accountID)
	if err != nil || account == nil {
		return nil, err
	}
	return &subscribers.Contact{
		Email: account.Email().String(),
		Name:  account.FullName(),
	}, nil
}

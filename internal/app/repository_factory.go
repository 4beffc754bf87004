package app

import (
	"context"
	"database/sql"
	"fmt"

	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
	billingPersistence "github.com/felixgeelhaar/consulta/internal/billing/infrastructure/persistence"
	identityApp "github.com/felixgeelhaar/consulta/internal/identity/application"
	identityDomain "github.com/felixgeelhaar/consulta/internal/identity/domain"
	identityPersistence "github.com/felixgeelhaar/consulta/internal/identity/infrastructure/persistence"
	"github.com/felixgeelhaar/consulta/internal/identity/infrastructure/tokens"
	sharedApplication "github.com/felixgeelhaar/consulta/internal/shared/application"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/consulta/internal/shared/infrastructure/persistence"
	supportDomain "github.com/felixgeelhaar/consulta/internal/support/domain"
	supportPersistence "github.com/felixgeelhaar/consulta/internal/support/infrastructure/persistence"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// AccountRepository creates an account repository for the configured driver.
func (f *RepositoryFactory) AccountRepository() (identityDomain.AccountRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return identityPersistence.NewPostgresAccountRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return identityPersistence.NewSQLiteAccountRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// SubscriptionRepository creates a subscription repository for the configured driver.
func (f *RepositoryFactory) SubscriptionRepository() (billingDomain.SubscriptionRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return billingPersistence.NewPostgresSubscriptionRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return billingPersistence.NewSQLiteSubscriptionRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// TicketRepository creates a support ticket repository for the configured driver.
func (f *RepositoryFactory) TicketRepository() (supportDomain.TicketRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return supportPersistence.NewPostgresTicketRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return supportPersistence.NewSQLiteTicketRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// TokenStore creates the database-backed one-time token store used when
// Redis is not configured.
func (f *RepositoryFactory) TokenStore() (identityApp.TokenStore, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return tokens.NewPostgresStore(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return tokens.NewSQLiteStore(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// OutboxRepository creates an outbox repository for the configured driver.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return outbox.NewPostgresRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return outbox.NewSQLiteRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// UnitOfWork creates the transaction boundary for the configured driver.
func (f *RepositoryFactory) UnitOfWork() (sharedApplication.UnitOfWork, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return sharedPersistence.NewPostgresUnitOfWork(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return sharedPersistence.NewSQLiteUnitOfWork(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// Migrate applies the embedded schema for the configured driver.
func (f *RepositoryFactory) Migrate(ctx context.Context) error {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return err
		}
		return migrations.RunPostgresMigrations(ctx, pool)

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return err
		}
		return migrations.RunSQLiteMigrations(ctx, db)

	default:
		return fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

func (f *RepositoryFactory) getPostgresPool() (*pgxpool.Pool, error) {
	pgConn, ok := f.conn.(interface{ Pool() *pgxpool.Pool })
	if !ok {
		return nil, fmt.Errorf("postgres connection does not expose Pool()")
	}
	return pgConn.Pool(), nil
}

func (f *RepositoryFactory) getSQLiteDB() (*sql.DB, error) {
	sqliteConn, ok := f.conn.(interface{ DB() *sql.DB })
	if !ok {
		return nil, fmt.Errorf("sqlite connection does not expose DB()")
	}
	return sqliteConn.DB(), nil
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}

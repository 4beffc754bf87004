// Package postgres backs the hosted deployment with a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/database"
)

func init() {
	database.Register(database.DriverPostgres, NewConnection)
}

// ErrMissingURL is returned when DATABASE_URL is unset for PostgreSQL.
var ErrMissingURL = errors.New("postgres: DATABASE_URL is required")

// Connection owns a pgx pool.
type Connection struct {
	pool *pgxpool.Pool
}

// NewConnection builds a pool from cfg.URL. The pool connects lazily, so a
// reachable server is only confirmed by Ping.
func NewConnection(ctx context.Context, cfg database.Config) (database.Connection, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = convert.IntToInt32Clamped(cfg.MaxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	return &Connection{pool: pool}, nil
}

func (c *Connection) Pool() *pgxpool.Pool            { return c.pool }
func (c *Connection) Driver() database.Driver        { return database.DriverPostgres }
func (c *Connection) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }

// Close waits for checked-out connections to be released.
func (c *Connection) Close() error {
	c.pool.Close()
	return nil
}

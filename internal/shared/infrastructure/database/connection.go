package database

import "context"

// Connection is an open store. Concrete connections expose their native
// handle (DB for SQLite, Pool for PostgreSQL) for repositories to use.
type Connection interface {
	Driver() Driver
	Ping(ctx context.Context) error
	Close() error
}

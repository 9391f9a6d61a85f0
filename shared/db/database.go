package db

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotConnected is returned by health checks on a database that was never connected or already closed
var ErrNotConnected = errors.New("database not connected")

// Database is a SQL post store connection with an explicit lifecycle
type Database interface {
	Connect() error
	Close() error
	Ping(ctx context.Context) error
	DB() *sql.DB
}

package db

import (
	"context"
	"time"

	"database/sql"
)

type (
	// Credentials contains DSN and Driver
	Credentials struct {
		DSN        string
		DriverName string
	}

	// ConnectionOptions include common connection options
	ConnectionOptions struct {
		Credentials Credentials

		// Connector is an optional parameter to produce our
		// own *sql.DB, which is then wrapped in *sqlx.DB
		Connector func(context.Context, Credentials) (*sql.DB, error)

		Retries        int
		RetryDelay     time.Duration
		ConnectTimeout time.Duration

		// MaxOpenConns limits the pool size, 0 means unlimited
		MaxOpenConns int
	}
)

// DefaultConnectionOptions returns options with sane retry settings
func DefaultConnectionOptions(credentials Credentials) ConnectionOptions {
	return ConnectionOptions{
		Credentials:    credentials,
		Retries:        10,
		RetryDelay:     2 * time.Second,
		ConnectTimeout: time.Minute,
	}
}

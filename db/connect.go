package db

import (
	"context"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	// database drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Connect connects to a database and produces the handle for injection
func Connect(ctx context.Context) (*sqlx.DB, error) {
	options := ConnectionOptions{}
	options.Credentials.DSN = os.Getenv("DB_DSN")
	options.Credentials.DriverName = os.Getenv("DB_DRIVER")
	return ConnectWithOptions(ctx, options)
}

// ConnectWithOptions connect to host based on ConnectionOptions{}
func ConnectWithOptions(ctx context.Context, options ConnectionOptions) (*sqlx.DB, error) {
	credentials := options.Credentials
	if credentials.DSN == "" {
		return nil, errors.New("DSN not provided")
	}
	if credentials.DriverName == "" {
		credentials.DriverName = "mysql"
	}
	dialect := DialectFor(credentials.DriverName)
	if dialect == Unknown {
		return nil, errors.Errorf("unsupported database driver: %s", credentials.DriverName)
	}
	if dialect == MySQL {
		credentials.DSN = cleanDSN(credentials.DSN)
	}

	var (
		handle *sqlx.DB
		err    error
	)
	if options.Connector != nil {
		conn, err := options.Connector(ctx, credentials)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		handle = sqlx.NewDb(conn, credentials.DriverName)
		if err := handle.PingContext(ctx); err != nil {
			handle.Close()
			return nil, errors.WithStack(err)
		}
	} else {
		handle, err = sqlx.ConnectContext(ctx, credentials.DriverName, credentials.DSN)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	if options.MaxOpenConns > 0 {
		handle.SetMaxOpenConns(options.MaxOpenConns)
	}
	return handle, nil
}

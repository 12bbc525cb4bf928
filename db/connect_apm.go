package db

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"go.elastic.co/apm/module/apmsql"
	"modernc.org/sqlite"

	// registers apm/mysql
	_ "go.elastic.co/apm/module/apmsql/mysql"
)

var registerAPMDrivers sync.Once

// APMConnector opens a traced *sql.DB through apmsql; set it as
// ConnectionOptions.Connector to get database spans in APM transactions
func APMConnector(ctx context.Context, credentials Credentials) (*sql.DB, error) {
	registerAPMDrivers.Do(func() {
		apmsql.Register("pgx", stdlib.GetDefaultDriver())
		apmsql.Register("sqlite", &sqlite.Driver{})
	})

	var driverName string
	switch DialectFor(credentials.DriverName) {
	case Postgres:
		driverName = "pgx"
	case MySQL:
		driverName = "mysql"
	case SQLite:
		driverName = "sqlite"
	default:
		return nil, errors.Errorf("no apm driver for %s", credentials.DriverName)
	}

	handle, err := apmsql.Open(driverName, credentials.DSN)
	return handle, errors.WithStack(err)
}

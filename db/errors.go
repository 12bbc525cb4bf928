package db

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
)

type (
	// PoolError is returned when a connection or transaction
	// can't be obtained from the pool
	PoolError struct {
		Cause error
	}

	// DbError is returned when the database rejects a statement.
	// Code holds the driver specific error code when one is known.
	DbError struct {
		Code  string
		Cause error
	}
)

func (e *PoolError) Error() string {
	return "pool error: " + e.Cause.Error()
}

func (e *PoolError) Unwrap() error {
	return e.Cause
}

func (e *DbError) Error() string {
	if e.Code == "" {
		return "db error: " + e.Cause.Error()
	}
	return fmt.Sprintf("db error [%s]: %s", e.Code, e.Cause)
}

func (e *DbError) Unwrap() error {
	return e.Cause
}

func poolError(err error) error {
	if err == nil {
		return nil
	}
	return &PoolError{Cause: err}
}

// dbError classifies a driver error; sql.ErrNoRows is passed through
func dbError(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	var existing *DbError
	if errors.As(err, &existing) {
		return err
	}
	if errors.Is(err, sql.ErrConnDone) {
		return poolError(err)
	}
	return &DbError{Code: errorCode(err), Cause: err}
}

func errorCode(err error) string {
	var (
		myErr   *mysql.MySQLError
		pgErr   *pgconn.PgError
		liteErr *sqlite.Error
	)
	switch {
	case errors.As(err, &myErr):
		return strconv.Itoa(int(myErr.Number))
	case errors.As(err, &pgErr):
		return pgErr.Code
	case errors.As(err, &liteErr):
		return strconv.Itoa(liteErr.Code())
	}
	return ""
}

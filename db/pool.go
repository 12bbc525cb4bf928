package db

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Conn is the query surface shared by Pool and Tx.
// Queries use `?` placeholders and are rebound for the dialect.
type Conn interface {
	Dialect() Dialect

	// Execute runs a statement and returns the affected row count
	Execute(ctx context.Context, query string, args ...interface{}) (int64, error)
	// BatchExecute runs a script which may contain many statements
	BatchExecute(ctx context.Context, script string) error
	// Insert runs an insert statement and returns the new row id
	Insert(ctx context.Context, query string, args ...interface{}) (int64, error)

	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Query(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
}

type executor struct {
	ext     sqlx.ExtContext
	dialect Dialect
}

func (e executor) Dialect() Dialect {
	return e.dialect
}

func (e executor) rebind(query string) string {
	if e.dialect == Postgres {
		return sqlx.Rebind(sqlx.DOLLAR, query)
	}
	return query
}

func (e executor) Execute(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := e.ext.ExecContext(ctx, e.rebind(query), args...)
	if err != nil {
		return 0, dbError(err)
	}
	affected, err := res.RowsAffected()
	return affected, dbError(err)
}

func (e executor) BatchExecute(ctx context.Context, script string) error {
	// go-sql-driver/mysql rejects multi statement queries by default
	if e.dialect != MySQL {
		_, err := e.ext.ExecContext(ctx, script)
		return dbError(err)
	}
	for _, stmt := range Statements(script) {
		if _, err := e.ext.ExecContext(ctx, stmt); err != nil {
			return dbError(err)
		}
	}
	return nil
}

func (e executor) Insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if e.dialect == MySQL {
		res, err := e.ext.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, dbError(err)
		}
		id, err := res.LastInsertId()
		return id, dbError(err)
	}
	var id int64
	err := e.ext.QueryRowxContext(ctx, e.rebind(query), args...).Scan(&id)
	return id, dbError(err)
}

func (e executor) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return dbError(sqlx.GetContext(ctx, e.ext, dest, e.rebind(query), args...))
}

func (e executor) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return dbError(sqlx.SelectContext(ctx, e.ext, dest, e.rebind(query), args...))
}

func (e executor) Query(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	rows, err := e.ext.QueryxContext(ctx, e.rebind(query), args...)
	return rows, dbError(err)
}

// Pool wraps a *sqlx.DB with dialect aware helpers
type Pool struct {
	executor

	db *sqlx.DB
}

// Tx is a transaction obtained from Pool.Transaction
type Tx struct {
	executor

	tx *sqlx.Tx
}

// NewPool produces a Pool for the handle, the dialect is taken from the driver name
func NewPool(handle *sqlx.DB) (*Pool, error) {
	dialect := DialectFor(handle.DriverName())
	if dialect == Unknown {
		return nil, errors.Errorf("unsupported database driver: %s", handle.DriverName())
	}
	return &Pool{
		executor: executor{ext: handle, dialect: dialect},
		db:       handle,
	}, nil
}

// DB returns the underlying handle
func (p *Pool) DB() *sqlx.DB {
	return p.db
}

// Close closes the underlying handle
func (p *Pool) Close() error {
	return p.db.Close()
}

// Transaction runs fn inside a transaction. The transaction is committed
// when fn returns nil and rolled back otherwise.
func (p *Pool) Transaction(ctx context.Context, fn func(context.Context, *Tx) error) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return poolError(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &Tx{executor: executor{ext: tx, dialect: p.dialect}, tx: tx}); err != nil {
		return err
	}

	return dbError(tx.Commit())
}

package migrate

import (
	"context"

	"github.com/pkg/errors"

	"github.com/titpetric/persist/db"
	"github.com/titpetric/persist/docstore"
)

type (
	// Migrator holds the locking strategy for a database dialect
	Migrator interface {
		// LockTable takes an exclusive lock on the history table
		LockTable(ctx context.Context, conn db.Conn, store *docstore.Store[MigrationData]) error
		// LockFirstMigrationRow row-locks the sentinel history row
		LockFirstMigrationRow(ctx context.Context, conn db.Conn, store *docstore.Store[MigrationData]) error
	}

	// TableUnlocker is implemented by migrators whose table locks
	// outlive the transaction that took them
	TableUnlocker interface {
		UnlockTable(ctx context.Context, conn db.Conn, store *docstore.Store[MigrationData]) error
	}

	lockingMigrator struct{}

	mysqlMigrator struct {
		lockingMigrator
	}

	sqliteMigrator struct{}
)

// ForDialect returns the Migrator for the dialect
func ForDialect(dialect db.Dialect) (Migrator, error) {
	switch dialect {
	case db.Postgres:
		return lockingMigrator{}, nil
	case db.MySQL:
		return mysqlMigrator{}, nil
	case db.SQLite:
		return sqliteMigrator{}, nil
	}
	return nil, errors.Errorf("no migrator for dialect %s", dialect)
}

func lockFirstMigrationRow(ctx context.Context, conn db.Conn, store *docstore.Store[MigrationData]) error {
	row, err := store.LockByDataField(ctx, conn, "migration_id", InitMigrationID)
	if err != nil {
		return errors.Wrap(err, "error locking first migration row")
	}
	if row == nil {
		return errors.Wrapf(docstore.ErrResultNotFound, "no %s row to lock", InitMigrationID)
	}
	return nil
}

func (lockingMigrator) LockTable(ctx context.Context, conn db.Conn, store *docstore.Store[MigrationData]) error {
	_, err := conn.Execute(ctx, store.Queries().LockTableSQL)
	return errors.Wrapf(err, "error locking table %s", store.Queries().QualifiedTableName)
}

func (lockingMigrator) LockFirstMigrationRow(ctx context.Context, conn db.Conn, store *docstore.Store[MigrationData]) error {
	return lockFirstMigrationRow(ctx, conn, store)
}

func (mysqlMigrator) UnlockTable(ctx context.Context, conn db.Conn, store *docstore.Store[MigrationData]) error {
	_, err := conn.Execute(ctx, store.Queries().UnlockTableSQL)
	return errors.Wrap(err, "error unlocking tables")
}

// SQLite locks the database file on write, there are no table locks
func (sqliteMigrator) LockTable(context.Context, db.Conn, *docstore.Store[MigrationData]) error {
	return nil
}

func (sqliteMigrator) LockFirstMigrationRow(ctx context.Context, conn db.Conn, store *docstore.Store[MigrationData]) error {
	return lockFirstMigrationRow(ctx, conn, store)
}

package migrate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/titpetric/persist/db"
	"github.com/titpetric/persist/docstore"
)

// IDGenerator produces run ids for log correlation, *sonyflake.Sonyflake satisfies it
type IDGenerator interface {
	NextID() (uint64, error)
}

// Engine applies migrations to a database, see NewBuilder
type Engine struct {
	pool       *db.Pool
	store      *docstore.Store[MigrationData]
	migrations []SqlMigration
	migrator   Migrator
	log        logrus.FieldLogger
	ids        IDGenerator

	state *atomic.Int32
	runs  *atomic.Uint64
}

// State returns the state of the most recent Migrate call
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Runs returns the number of Migrate calls started
func (e *Engine) Runs() uint64 {
	return e.runs.Load()
}

// Migrations returns the configured migrations
func (e *Engine) Migrations() []SqlMigration {
	return e.migrations
}

// MigrationsHistory returns the history table rows including the sentinel row
func (e *Engine) MigrationsHistory(ctx context.Context, conn db.Conn) ([]MigrationModel, error) {
	return e.store.FetchAll(ctx, conn)
}

func (e *Engine) setState(state State) {
	e.state.Store(int32(state))
}

func (e *Engine) runID() string {
	run := e.runs.Inc()
	if e.ids != nil {
		if id, err := e.ids.NextID(); err == nil {
			return strconv.FormatUint(id, 10)
		}
	}
	return strconv.FormatUint(run, 10)
}

// Migrate applies outstanding migrations in order. It is safe to call
// concurrently from many processes against the same database.
func (e *Engine) Migrate(ctx context.Context) error {
	log := e.log.WithFields(logrus.Fields{
		"run_id": e.runID(),
		"table":  e.store.Queries().QualifiedTableName,
	})

	if err := checkDuplicateIDs(e.migrations); err != nil {
		e.setState(Failed)
		return err
	}

	e.setState(PreMigration)
	if err := e.preMigration(ctx, log); err != nil {
		e.setState(Failed)
		return &MigrationError{
			Message: "Failed to execute pre-migration DB preparation",
			Cause:   err,
		}
	}

	err := e.pool.Transaction(ctx, func(ctx context.Context, tx *db.Tx) error {
		if err := e.migrator.LockFirstMigrationRow(ctx, tx, e.store); err != nil {
			return err
		}
		e.setState(Locked)
		return e.startMigration(ctx, tx, log)
	})
	if err != nil {
		e.setState(Failed)
		log.WithError(err).Error("migration failed")

		var migrationErr *MigrationError
		if errors.As(err, &migrationErr) {
			return err
		}
		return &MigrationError{
			Message: "Failed to execute DB migration script",
			Cause:   err,
		}
	}

	e.setState(Committed)
	log.Info("migrations completed")
	return nil
}

func (e *Engine) preMigration(ctx context.Context, log logrus.FieldLogger) error {
	err := e.pool.Transaction(ctx, func(ctx context.Context, tx *db.Tx) error {
		return e.store.CreateTableIfNotExists(ctx, tx)
	})
	if err != nil {
		log.WithError(err).Warn("Create table process completed with error. This could be fine if another process attempted the same operation concurrently")
	}

	return e.pool.Transaction(ctx, func(ctx context.Context, tx *db.Tx) error {
		if err := e.migrator.LockTable(ctx, tx, e.store); err != nil {
			return err
		}
		if unlocker, ok := e.migrator.(TableUnlocker); ok {
			defer func() {
				if err := unlocker.UnlockTable(ctx, tx, e.store); err != nil {
					log.WithError(err).Warn("unlocking history table failed")
				}
			}()
		}
		return e.createMigrationZero(ctx, tx)
	})
}

func (e *Engine) createMigrationZero(ctx context.Context, conn db.Conn) error {
	count, err := e.store.CountAll(ctx, conn)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = e.store.Save(ctx, conn, docstore.New(buildMigrationZero()))
	return err
}

func (e *Engine) startMigration(ctx context.Context, conn db.Conn, log logrus.FieldLogger) error {
	history, err := e.store.FetchAll(ctx, conn)
	if err != nil {
		return err
	}

	e.setState(Reconciling)
	history, err = cleanHistory(history)
	if err != nil {
		return err
	}
	if err := checkHistoryLength(history, e.migrations); err != nil {
		return err
	}

	for i, migration := range e.migrations {
		applied, err := checkIfMigrationAlreadyApplied(history, migration, i)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		e.setState(Applying)
		log := log.WithField("migration_id", migration.ID)
		log.Info("applying migration")

		start := time.Now()
		if err := conn.BatchExecute(ctx, migration.Up.SQL); err != nil {
			return &MigrationError{
				Message:     fmt.Sprintf("Failed to execute migration with id [%s]", migration.ID),
				MigrationID: migration.ID,
				Cause:       err,
			}
		}

		_, err = e.store.Save(ctx, conn, docstore.New(MigrationData{
			MigrationID:        migration.ID,
			MigrationType:      Up,
			MD5Checksum:        migration.Up.MD5,
			InstalledOnEpochMs: uint64(time.Now().UnixMilli()),
			ExecutionTimeMs:    uint64(time.Since(start).Milliseconds()),
			Success:            true,
		}))
		if err != nil {
			return &MigrationError{
				Message:     fmt.Sprintf("Failed to save history for migration with id [%s]", migration.ID),
				MigrationID: migration.ID,
				Cause:       err,
			}
		}
	}
	return nil
}

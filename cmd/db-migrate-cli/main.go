package main

import (
	"context"
	"os"

	"github.com/SentimensRG/sigctx"
	"github.com/namsral/flag"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.elastic.co/apm"

	"github.com/titpetric/persist/db"
	"github.com/titpetric/persist/migrate"
)

type config struct {
	db struct {
		DSN     string
		Driver  string
		Retries int
		APM     bool
	}
	Migrations string
	Table      string
	Schema     string
	Real       bool
	History    bool
}

func main() {
	var config config
	flag.StringVar(&config.db.Driver, "db-driver", "mysql", "Database driver (mysql, pgx, sqlite)")
	flag.StringVar(&config.db.DSN, "db-dsn", "", "DSN for database connection")
	flag.IntVar(&config.db.Retries, "db-retries", 5, "Connection attempts before giving up")
	flag.BoolVar(&config.db.APM, "db-apm", false, "Trace database queries with Elastic APM")
	flag.StringVar(&config.Migrations, "migrations", "migrations", "Directory holding migrations")
	flag.StringVar(&config.Table, "table", migrate.DefaultTableName, "Migration history table")
	flag.StringVar(&config.Schema, "schema", "", "Schema of the migration history table")
	flag.BoolVar(&config.Real, "real", false, "false = print migrations, true = run migrations")
	flag.BoolVar(&config.History, "history", false, "Print the migration history as a markdown table")
	flag.Parse()

	ctx := sigctx.New()
	if err := run(ctx, config); err != nil {
		logrus.Fatalf("An error occured: %+v", err)
	}
}

func run(ctx context.Context, config config) error {
	migrations, err := migrate.FromDir(config.Migrations)
	if err != nil {
		return err
	}
	logrus.Infof("Migrations: %+v", migrate.List(migrations))

	if !config.Real && !config.History {
		return migrate.Print(os.Stdout, migrations)
	}

	tx := apm.DefaultTracer.StartTransaction("db-migrate", "cli")
	ctx = apm.ContextWithTransaction(ctx, tx)
	defer func() {
		tx.End()
		apm.DefaultTracer.Flush(nil)
	}()

	err = func() error {
		options := db.DefaultConnectionOptions(db.Credentials{
			DSN:        config.db.DSN,
			DriverName: config.db.Driver,
		})
		options.Retries = config.db.Retries
		if config.db.APM {
			options.Connector = db.APMConnector
		}

		handle, err := db.ConnectWithRetry(ctx, options)
		if err != nil {
			return errors.Wrap(err, "Error connecting to database")
		}
		defer handle.Close()

		pool, err := db.NewPool(handle)
		if err != nil {
			return err
		}

		engine, err := migrate.NewBuilder(pool).
			WithTableName(config.Table).
			WithSchemaName(config.Schema).
			WithMigrations(migrations).
			Build()
		if err != nil {
			return err
		}

		if config.Real {
			if err := engine.Migrate(ctx); err != nil {
				return err
			}
		}

		if config.History {
			history, err := engine.MigrationsHistory(ctx, pool)
			if err != nil {
				return err
			}
			if _, err := os.Stdout.Write(renderHistoryTable(config.Table, history)); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}()
	if err != nil {
		tx.Result = "error"
		apm.CaptureError(ctx, err).Send()
		return err
	}
	tx.Result = "success"
	return nil
}

package inject

import (
	"os"

	"github.com/google/wire"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"

	"github.com/titpetric/persist/db"
	"github.com/titpetric/persist/migrate"
)

// Logger produces the process logger, LOG_LEVEL sets the level
func Logger() logrus.FieldLogger {
	log := logrus.StandardLogger()
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
	return log
}

// Migrations loads migrations from MIGRATIONS_DIR, defaulting to ./migrations
func Migrations() ([]migrate.SqlMigration, error) {
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "migrations"
	}
	return migrate.FromDir(dir)
}

// NewEngine builds a migration engine, MIGRATIONS_TABLE and
// MIGRATIONS_SCHEMA override the history table location
func NewEngine(pool *db.Pool, migrations []migrate.SqlMigration, flake *sonyflake.Sonyflake, log logrus.FieldLogger) (*migrate.Engine, error) {
	builder := migrate.NewBuilder(pool).
		WithMigrations(migrations).
		WithLogger(log)
	if table := os.Getenv("MIGRATIONS_TABLE"); table != "" {
		builder.WithTableName(table)
	}
	if schema := os.Getenv("MIGRATIONS_SCHEMA"); schema != "" {
		builder.WithSchemaName(schema)
	}
	// sonyflake.NewSonyflake returns nil when no machine id can be found
	if flake != nil {
		builder.WithIDGenerator(flake)
	}
	return builder.Build()
}

// Inject is the main ProviderSet for wire
var Inject = wire.NewSet(
	db.Connect,
	db.NewPool,
	Sonyflake,
	Logger,
	Migrations,
	NewEngine,
)

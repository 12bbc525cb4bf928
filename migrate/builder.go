package migrate

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/titpetric/persist/db"
	"github.com/titpetric/persist/docstore"
)

// Builder configures an Engine
type Builder struct {
	pool       *db.Pool
	tableName  string
	schemaName string
	migrations []SqlMigration
	migrator   Migrator
	log        logrus.FieldLogger
	ids        IDGenerator
}

// NewBuilder starts an Engine configuration over pool
func NewBuilder(pool *db.Pool) *Builder {
	return &Builder{
		pool:      pool,
		tableName: DefaultTableName,
	}
}

func (b *Builder) WithTableName(name string) *Builder {
	b.tableName = name
	return b
}

func (b *Builder) WithSchemaName(name string) *Builder {
	b.schemaName = name
	return b
}

// WithMigrations sets the ordered migration list, the order is kept as given
func (b *Builder) WithMigrations(migrations []SqlMigration) *Builder {
	b.migrations = migrations
	return b
}

func (b *Builder) WithLogger(log logrus.FieldLogger) *Builder {
	b.log = log
	return b
}

// WithMigrator overrides the locking strategy picked from the pool dialect
func (b *Builder) WithMigrator(migrator Migrator) *Builder {
	b.migrator = migrator
	return b
}

func (b *Builder) WithIDGenerator(ids IDGenerator) *Builder {
	b.ids = ids
	return b
}

// Build produces the Engine
func (b *Builder) Build() (*Engine, error) {
	if b.pool == nil {
		return nil, errors.New("migrate: pool not provided")
	}

	queries, err := docstore.NewQueries(b.pool.Dialect(), docstore.QueryOptions{
		TableName:  b.tableName,
		SchemaName: b.schemaName,
	})
	if err != nil {
		return nil, err
	}

	migrator := b.migrator
	if migrator == nil {
		if migrator, err = ForDialect(b.pool.Dialect()); err != nil {
			return nil, err
		}
	}

	log := b.log
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Engine{
		pool:       b.pool,
		store:      docstore.NewStore[MigrationData](queries),
		migrations: b.migrations,
		migrator:   migrator,
		log:        log,
		ids:        b.ids,
		state:      atomic.NewInt32(int32(Idle)),
		runs:       atomic.NewUint64(0),
	}, nil
}

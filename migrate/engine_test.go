package migrate

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titpetric/persist/db"
	"github.com/titpetric/persist/docstore"
)

func newTestPool(t *testing.T) *db.Pool {
	t.Helper()

	handle, err := db.ConnectWithOptions(context.Background(), db.ConnectionOptions{
		Credentials: db.Credentials{
			DriverName: "sqlite",
			DSN:        filepath.Join(t.TempDir(), "migrate.db"),
		},
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		handle.Close()
	})

	pool, err := db.NewPool(handle)
	require.NoError(t, err)
	return pool
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEngine(t *testing.T, pool *db.Pool, migrations ...Migration) *Engine {
	t.Helper()

	engine, err := NewBuilder(pool).
		WithMigrations(FromMigrations(migrations...)).
		WithLogger(testLogger()).
		Build()
	require.NoError(t, err)
	return engine
}

func migrationIDs(t *testing.T, engine *Engine, pool *db.Pool) []string {
	t.Helper()

	history, err := engine.MigrationsHistory(context.Background(), pool)
	require.NoError(t, err)

	result := make([]string, len(history))
	for k, row := range history {
		result[k] = row.Data.MigrationID
	}
	return result
}

func tableExists(t *testing.T, pool *db.Pool, name string) bool {
	t.Helper()

	var count int
	require.NoError(t, pool.Get(context.Background(), &count, "select count(*) from sqlite_master where type = 'table' and name = ?", name))
	return count > 0
}

var (
	migrationA = Migration{ID: "A", Up: "create table a (id integer primary key);\ninsert into a (id) values (1);", Down: "drop table a;"}
	migrationB = Migration{ID: "B", Up: "create table b (id integer primary key);"}
	migrationC = Migration{ID: "C", Up: "create table c (id integer primary key);"}
)

func TestMigrateOrdering(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	engine := newTestEngine(t, pool, migrationA, migrationB, migrationC)

	assert.Equal(t, Idle, engine.State())
	require.NoError(t, engine.Migrate(ctx))
	assert.Equal(t, Committed, engine.State())

	assert.Equal(t, []string{InitMigrationID, "A", "B", "C"}, migrationIDs(t, engine, pool))

	history, err := engine.MigrationsHistory(ctx, pool)
	require.NoError(t, err)
	for k, row := range history[1:] {
		migration := engine.Migrations()[k]
		assert.Equal(t, migration.Up.MD5, row.Data.MD5Checksum)
		assert.Equal(t, Up, row.Data.MigrationType)
		assert.True(t, row.Data.Success)
		assert.NotZero(t, row.Data.InstalledOnEpochMs)
		assert.Less(t, history[k].ID, row.ID)
	}
	assert.Equal(t, Init, history[0].Data.MigrationType)

	for _, table := range []string{"a", "b", "c"} {
		assert.True(t, tableExists(t, pool, table), "missing table %s", table)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	engine := newTestEngine(t, pool, migrationA, migrationB)

	require.NoError(t, engine.Migrate(ctx))
	before, err := engine.MigrationsHistory(ctx, pool)
	require.NoError(t, err)

	require.NoError(t, engine.Migrate(ctx))
	require.NoError(t, newTestEngine(t, pool, migrationA, migrationB).Migrate(ctx))

	after, err := engine.MigrationsHistory(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, uint64(2), engine.Runs())
}

func TestMigrateAppendsNewMigrations(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	require.NoError(t, newTestEngine(t, pool, migrationA).Migrate(ctx))
	engine := newTestEngine(t, pool, migrationA, migrationB)
	require.NoError(t, engine.Migrate(ctx))

	assert.Equal(t, []string{InitMigrationID, "A", "B"}, migrationIDs(t, engine, pool))
}

func TestMigrateDetectsAlteredSQL(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	require.NoError(t, newTestEngine(t, pool, migrationA).Migrate(ctx))

	altered := migrationA
	altered.Up = strings.Replace(altered.Up, "values (1)", "values (2)", 1)
	engine := newTestEngine(t, pool, altered, migrationB)

	err := engine.Migrate(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlteredMigrationSQL), "unexpected error: %v", err)

	var migrationErr *MigrationError
	assert.True(t, errors.As(err, &migrationErr))
	assert.Equal(t, Failed, engine.State())

	assert.Equal(t, []string{InitMigrationID, "A"}, migrationIDs(t, engine, pool))
	assert.False(t, tableExists(t, pool, "b"))
}

func TestMigrateDetectsReordering(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	require.NoError(t, newTestEngine(t, pool, migrationA, migrationB).Migrate(ctx))

	engine := newTestEngine(t, pool, migrationB, migrationA)
	err := engine.Migrate(ctx)
	assert.True(t, errors.Is(err, ErrWrongMigrationSet), "unexpected error: %v", err)

	engine = newTestEngine(t, pool, migrationA)
	err = engine.Migrate(ctx)
	assert.True(t, errors.Is(err, ErrWrongMigrationSet), "unexpected error: %v", err)
}

func TestMigrateRejectsDuplicateIDs(t *testing.T) {
	pool := newTestPool(t)
	engine := newTestEngine(t, pool, migrationA, migrationA)

	err := engine.Migrate(context.Background())
	assert.True(t, errors.Is(err, ErrWrongMigrationSet))
	assert.False(t, tableExists(t, pool, DefaultTableName))
}

func TestMigratePartialFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	broken := Migration{ID: "B", Up: "create table b (id integer primary key);\nthis is not sql;"}
	engine := newTestEngine(t, pool, migrationA, broken, migrationC)

	err := engine.Migrate(ctx)
	require.Error(t, err)

	var migrationErr *MigrationError
	require.True(t, errors.As(err, &migrationErr))
	assert.Equal(t, "B", migrationErr.MigrationID)
	assert.Contains(t, migrationErr.Error(), "Failed to execute migration with id [B]")

	var dbErr *db.DbError
	assert.True(t, errors.As(err, &dbErr))

	assert.Equal(t, []string{InitMigrationID}, migrationIDs(t, engine, pool))
	for _, table := range []string{"a", "b", "c"} {
		assert.False(t, tableExists(t, pool, table), "unexpected table %s", table)
	}
}

func TestMigrateConcurrent(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	var wg sync.WaitGroup
	errs := make([]error, 50)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engine, err := NewBuilder(pool).
				WithMigrations(FromMigrations(migrationA)).
				WithLogger(testLogger()).
				Build()
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = engine.Migrate(ctx)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}

	engine := newTestEngine(t, pool, migrationA)
	assert.Equal(t, []string{InitMigrationID, "A"}, migrationIDs(t, engine, pool))
}

func TestMigrateCustomTableName(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)
	table := "history_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	engine, err := NewBuilder(pool).
		WithTableName(table).
		WithMigrations(FromMigrations(migrationA)).
		WithLogger(testLogger()).
		Build()
	require.NoError(t, err)
	require.NoError(t, engine.Migrate(ctx))

	assert.True(t, tableExists(t, pool, table))
	assert.False(t, tableExists(t, pool, DefaultTableName))
	assert.Equal(t, []string{InitMigrationID, "A"}, migrationIDs(t, engine, pool))
}

func TestMigrateCorruptedHistory(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	queries, err := docstore.NewQueries(pool.Dialect(), docstore.QueryOptions{TableName: DefaultTableName})
	require.NoError(t, err)
	store := docstore.NewStore[MigrationData](queries)
	require.NoError(t, store.CreateTableIfNotExists(ctx, pool))
	_, err = store.Save(ctx, pool, docstore.New(MigrationData{MigrationID: "A", MigrationType: Up}))
	require.NoError(t, err)

	err = newTestEngine(t, pool, migrationA).Migrate(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, docstore.ErrResultNotFound), "unexpected error: %v", err)
}

type countingIDs struct {
	calls int
}

func (c *countingIDs) NextID() (uint64, error) {
	c.calls++
	return uint64(c.calls), nil
}

func TestMigrateUsesIDGenerator(t *testing.T) {
	pool := newTestPool(t)
	ids := &countingIDs{}

	engine, err := NewBuilder(pool).
		WithMigrations(FromMigrations(migrationA)).
		WithLogger(testLogger()).
		WithIDGenerator(ids).
		Build()
	require.NoError(t, err)
	require.NoError(t, engine.Migrate(context.Background()))
	assert.Equal(t, 1, ids.calls)
}

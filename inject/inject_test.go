package inject

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titpetric/persist/db"
	"github.com/titpetric/persist/migrate"
)

func TestNewEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "migrations", "00010_create"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "migrations", "00010_create", "up.sql"), []byte("create table t (id integer);"), 0644))

	t.Setenv("MIGRATIONS_DIR", filepath.Join(dir, "migrations"))
	t.Setenv("MIGRATIONS_TABLE", "schema_history")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(dir, "inject.db"))

	ctx := context.Background()
	handle, err := db.Connect(ctx)
	require.NoError(t, err)
	defer handle.Close()

	pool, err := db.NewPool(handle)
	require.NoError(t, err)

	migrations, err := Migrations()
	require.NoError(t, err)
	assert.Equal(t, []string{"00010_create"}, migrate.List(migrations))

	engine, err := NewEngine(pool, migrations, Sonyflake(), Logger())
	require.NoError(t, err)
	require.NoError(t, engine.Migrate(ctx))

	history, err := engine.MigrationsHistory(ctx, pool)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "00010_create", history[1].Data.MigrationID)
}

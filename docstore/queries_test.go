package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titpetric/persist/db"
)

func TestQueriesPostgres(t *testing.T) {
	q, err := NewQueries(db.Postgres, QueryOptions{TableName: "history", SchemaName: "app"})
	require.NoError(t, err)

	assert.Equal(t, `"app"."history"`, q.QualifiedTableName)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "app"."history" (id bigserial primary key, version int not null, data JSONB)`, q.CreateTableSQL)
	assert.Equal(t, `INSERT INTO "app"."history" (version, data) VALUES (?, ?) RETURNING id`, q.SaveSQL)
	assert.Equal(t, `LOCK TABLE "app"."history" IN ACCESS EXCLUSIVE MODE`, q.LockTableSQL)
	assert.Empty(t, q.UnlockTableSQL)

	query, err := q.FindByDataFieldSQL("migration_id", true)
	require.NoError(t, err)
	assert.Equal(t, `SELECT id, version, data FROM "app"."history" WHERE data ->> 'migration_id' = ? FOR UPDATE`, query)
}

func TestQueriesMySQL(t *testing.T) {
	q, err := NewQueries(db.MySQL, QueryOptions{TableName: "history", DataField: "payload"})
	require.NoError(t, err)

	assert.Equal(t, "`history`", q.QualifiedTableName)
	assert.Equal(t, "INSERT INTO `history` (version, payload) VALUES (?, ?)", q.SaveSQL)
	assert.Equal(t, "LOCK TABLES `history` WRITE", q.LockTableSQL)
	assert.Equal(t, "UNLOCK TABLES", q.UnlockTableSQL)
	assert.Equal(t, "DROP TABLE IF EXISTS `history` CASCADE", q.DropTableCascadeSQL)

	query, err := q.FindByDataFieldSQL("migration_id", true)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, version, payload FROM `history` WHERE JSON_UNQUOTE(JSON_EXTRACT(payload, '$.migration_id')) = ? FOR UPDATE", query)
}

func TestQueriesSQLite(t *testing.T) {
	q, err := NewQueries(db.SQLite, QueryOptions{TableName: "history", IDField: "pk"})
	require.NoError(t, err)

	assert.Empty(t, q.LockTableSQL)
	assert.Equal(t, `SELECT pk, version, data FROM "history" ORDER BY pk ASC`, q.FindAllSQL)
	assert.Equal(t, `DROP TABLE IF EXISTS "history"`, q.DropTableCascadeSQL)

	query, err := q.FindByDataFieldSQL("migration_id", true)
	require.NoError(t, err)
	assert.Equal(t, `SELECT pk, version, data FROM "history" WHERE json_extract(data, '$.migration_id') = ?`, query)

	_, err = q.FindByDataFieldSQL("x'; drop table history; --", false)
	assert.Error(t, err)
}

func TestQueriesInvalid(t *testing.T) {
	_, err := NewQueries(db.SQLite, QueryOptions{})
	assert.Error(t, err)

	_, err = NewQueries(db.Unknown, QueryOptions{TableName: "t"})
	assert.Error(t, err)
}

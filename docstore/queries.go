package docstore

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"

	"github.com/titpetric/persist/db"
)

var dataFieldName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type (
	// QueryOptions names the table and columns a Queries set is rendered for
	QueryOptions struct {
		TableName    string
		SchemaName   string
		IDField      string
		VersionField string
		DataField    string
	}

	// Queries holds the pre-rendered statements for one table.
	// All statements use `?` placeholders.
	Queries struct {
		Dialect db.Dialect
		QueryOptions

		QualifiedTableName string

		CountAllSQL   string
		ExistsByIDSQL string

		FindBaseSQL   string
		FindAllSQL    string
		FindByIDSQL   string
		DeleteSQL     string
		DeleteAllSQL  string
		DeleteByIDSQL string

		SaveSQL   string
		UpdateSQL string

		CreateTableSQL      string
		DropTableSQL        string
		DropTableCascadeSQL string

		// LockTableSQL is empty when the dialect has no table locks
		LockTableSQL   string
		UnlockTableSQL string

		dataField func(key string) string
		forUpdate string
	}
)

// NewQueries renders the statements for the dialect
func NewQueries(dialect db.Dialect, options QueryOptions) (*Queries, error) {
	if options.TableName == "" {
		return nil, errors.New("table name not provided")
	}
	if options.IDField == "" {
		options.IDField = "id"
	}
	if options.VersionField == "" {
		options.VersionField = "version"
	}
	if options.DataField == "" {
		options.DataField = "data"
	}

	q := &Queries{
		Dialect:      dialect,
		QueryOptions: options,
	}

	var (
		quote      func(string) string
		createSQL  string
		saveSuffix string
	)
	switch dialect {
	case db.Postgres:
		quote = func(name string) string { return `"` + name + `"` }
		createSQL = "CREATE TABLE IF NOT EXISTS %s (%s bigserial primary key, %s int not null, %s JSONB)"
		saveSuffix = " RETURNING " + options.IDField
		q.dataField = func(key string) string {
			return fmt.Sprintf("%s ->> '%s'", options.DataField, key)
		}
		q.forUpdate = " FOR UPDATE"
	case db.MySQL:
		quote = func(name string) string { return "`" + name + "`" }
		createSQL = "CREATE TABLE IF NOT EXISTS %s (%s BIGINT primary key NOT NULL AUTO_INCREMENT, %s int not null, %s JSON)"
		q.dataField = func(key string) string {
			return fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(%s, '$.%s'))", options.DataField, key)
		}
		q.forUpdate = " FOR UPDATE"
	case db.SQLite:
		quote = func(name string) string { return `"` + name + `"` }
		createSQL = "CREATE TABLE IF NOT EXISTS %s (%s INTEGER PRIMARY KEY AUTOINCREMENT, %s integer not null, %s TEXT)"
		saveSuffix = " RETURNING " + options.IDField
		q.dataField = func(key string) string {
			return fmt.Sprintf("json_extract(%s, '$.%s')", options.DataField, key)
		}
	default:
		return nil, errors.Errorf("unsupported dialect: %s", dialect)
	}

	table := quote(options.TableName)
	if options.SchemaName != "" {
		table = quote(options.SchemaName) + "." + table
	}
	q.QualifiedTableName = table

	id, version, data := options.IDField, options.VersionField, options.DataField

	q.CountAllSQL = "SELECT COUNT(*) FROM " + table
	q.ExistsByIDSQL = fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = ?)", table, id)

	q.FindBaseSQL = fmt.Sprintf("SELECT %s, %s, %s FROM %s", id, version, data, table)
	q.FindAllSQL = fmt.Sprintf("%s ORDER BY %s ASC", q.FindBaseSQL, id)
	q.FindByIDSQL = fmt.Sprintf("%s WHERE %s = ? LIMIT 1", q.FindBaseSQL, id)

	q.DeleteSQL = fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?", table, id, version)
	q.DeleteAllSQL = "DELETE FROM " + table
	q.DeleteByIDSQL = fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, id)

	q.SaveSQL = fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)%s", table, version, data, saveSuffix)
	q.UpdateSQL = fmt.Sprintf("UPDATE %s SET %s = ?, %s = ? WHERE %s = ? AND %s = ?", table, version, data, id, version)

	q.CreateTableSQL = fmt.Sprintf(createSQL, table, id, version, data)
	q.DropTableSQL = "DROP TABLE IF EXISTS " + table
	q.DropTableCascadeSQL = q.DropTableSQL
	if dialect != db.SQLite {
		q.DropTableCascadeSQL += " CASCADE"
	}

	switch dialect {
	case db.Postgres:
		q.LockTableSQL = fmt.Sprintf("LOCK TABLE %s IN ACCESS EXCLUSIVE MODE", table)
	case db.MySQL:
		q.LockTableSQL = fmt.Sprintf("LOCK TABLES %s WRITE", table)
		q.UnlockTableSQL = "UNLOCK TABLES"
	}

	return q, nil
}

// FindByDataFieldSQL selects rows whose data field `key` equals the bound value.
// With forUpdate set the matched rows are locked where the dialect supports it.
func (q *Queries) FindByDataFieldSQL(key string, forUpdate bool) (string, error) {
	if !dataFieldName.MatchString(key) {
		return "", errors.Errorf("invalid data field name: %q", key)
	}
	query := fmt.Sprintf("%s WHERE %s = ?", q.FindBaseSQL, q.dataField(key))
	if forUpdate {
		query += q.forUpdate
	}
	return query, nil
}

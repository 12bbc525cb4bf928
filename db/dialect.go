package db

import "strings"

// Dialect identifies the SQL flavour spoken by a connection
type Dialect int

const (
	// Unknown is returned for unsupported driver names
	Unknown Dialect = iota
	Postgres
	MySQL
	SQLite
)

// DialectFor maps a database/sql driver name to a Dialect
func DialectFor(driverName string) Dialect {
	switch strings.TrimPrefix(driverName, "apm/") {
	case "pgx", "pgx/v5", "postgres":
		return Postgres
	case "mysql":
		return MySQL
	case "sqlite", "sqlite3":
		return SQLite
	}
	return Unknown
}

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	}
	return "unknown"
}

package migrate

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/titpetric/persist/docstore"
)

const (
	// InitMigrationID is the id of the sentinel history row
	InitMigrationID = "C3P0_INIT_MIGRATION"

	// DefaultTableName is the history table used when none is configured
	DefaultTableName = "C3P0_MIGRATE_SCHEMA_HISTORY"
)

// MigrationType tells how a history row was produced
type MigrationType string

const (
	Init MigrationType = "C3P0INIT"
	Up   MigrationType = "UP"
	// Down is reserved, down scripts are stored but never executed
	Down MigrationType = "DOWN"
)

type (
	// Migration is a named pair of up and down scripts
	Migration struct {
		ID   string
		Up   string
		Down string
	}

	// Script is a SQL script with its checksum
	Script struct {
		SQL string
		MD5 string
	}

	// SqlMigration is a Migration with checksums attached
	SqlMigration struct {
		ID   string
		Up   Script
		Down Script
	}

	// MigrationData is the payload of a history row
	MigrationData struct {
		MigrationID        string        `json:"migration_id"`
		MigrationType      MigrationType `json:"migration_type"`
		MD5Checksum        string        `json:"md5_checksum"`
		InstalledOnEpochMs uint64        `json:"installed_on_epoch_ms"`
		ExecutionTimeMs    uint64        `json:"execution_time_ms"`
		Success            bool          `json:"success"`
	}

	// MigrationModel is a persisted history row
	MigrationModel = docstore.Model[MigrationData]
)

// NewScript computes the checksum of sql
func NewScript(sql string) Script {
	sum := md5.Sum([]byte(sql))
	return Script{
		SQL: sql,
		MD5: hex.EncodeToString(sum[:]),
	}
}

// NewSqlMigration attaches checksums to m
func NewSqlMigration(m Migration) SqlMigration {
	return SqlMigration{
		ID:   m.ID,
		Up:   NewScript(m.Up),
		Down: NewScript(m.Down),
	}
}

// FromMigrations converts migrations declared in code, keeping their order
func FromMigrations(migrations ...Migration) []SqlMigration {
	result := make([]SqlMigration, len(migrations))
	for k, m := range migrations {
		result[k] = NewSqlMigration(m)
	}
	return result
}

// List returns the migration ids in order
func List(migrations []SqlMigration) []string {
	result := make([]string, len(migrations))
	for k, m := range migrations {
		result[k] = m.ID
	}
	return result
}

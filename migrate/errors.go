package migrate

import (
	"github.com/pkg/errors"
)

var (
	// ErrFileSystem is returned when migration sources can't be read
	ErrFileSystem = errors.New("file system error")
	// ErrWrongMigrationSet is returned when the migration list is malformed
	// or does not match the applied history
	ErrWrongMigrationSet = errors.New("wrong migration set")
	// ErrAlteredMigrationSQL is returned when an applied migration changed
	ErrAlteredMigrationSQL = errors.New("altered migration sql")
	// ErrCorruptedDbMigrationState is returned when the history table has no sentinel row
	ErrCorruptedDbMigrationState = errors.New("corrupted db migration state")
)

// MigrationError is returned by Engine.Migrate. MigrationID is set
// when a specific migration script failed.
type MigrationError struct {
	Message     string
	MigrationID string
	Cause       error
}

func (e *MigrationError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *MigrationError) Unwrap() error {
	return e.Cause
}

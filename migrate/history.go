package migrate

import (
	"github.com/pkg/errors"
)

func buildMigrationZero() MigrationData {
	return MigrationData{
		MigrationID:   InitMigrationID,
		MigrationType: Init,
		Success:       true,
	}
}

// cleanHistory strips the sentinel row, which must come first
func cleanHistory(history []MigrationModel) ([]MigrationModel, error) {
	if len(history) == 0 {
		return nil, errors.Wrapf(ErrCorruptedDbMigrationState, "history is missing the %s row", InitMigrationID)
	}
	if history[0].Data.MigrationID != InitMigrationID {
		return nil, errors.Wrapf(ErrCorruptedDbMigrationState, "first history row is [%s], expected [%s]", history[0].Data.MigrationID, InitMigrationID)
	}
	return history[1:], nil
}

// checkIfMigrationAlreadyApplied compares the migration with the
// history row at the same index
func checkIfMigrationAlreadyApplied(history []MigrationModel, migration SqlMigration, index int) (bool, error) {
	if index >= len(history) {
		return false, nil
	}
	applied := history[index].Data
	if applied.MigrationID != migration.ID {
		return false, errors.Wrapf(ErrWrongMigrationSet, "migration at position %d is [%s], history has [%s]", index, migration.ID, applied.MigrationID)
	}
	if applied.MD5Checksum != migration.Up.MD5 {
		return false, errors.Wrapf(ErrAlteredMigrationSQL, "migration [%s] checksum %s, history has %s", migration.ID, migration.Up.MD5, applied.MD5Checksum)
	}
	return true, nil
}

// checkHistoryLength fails when history holds more migrations than configured
func checkHistoryLength(history []MigrationModel, migrations []SqlMigration) error {
	if len(history) > len(migrations) {
		return errors.Wrapf(ErrWrongMigrationSet, "history has %d migrations, %d configured, first unknown is [%s]", len(history), len(migrations), history[len(migrations)].Data.MigrationID)
	}
	return nil
}

func checkDuplicateIDs(migrations []SqlMigration) error {
	seen := make(map[string]bool, len(migrations))
	for _, m := range migrations {
		if m.ID == "" {
			return errors.Wrap(ErrWrongMigrationSet, "migration with empty id")
		}
		if m.ID == InitMigrationID {
			return errors.Wrapf(ErrWrongMigrationSet, "migration id [%s] is reserved", m.ID)
		}
		if seen[m.ID] {
			return errors.Wrapf(ErrWrongMigrationSet, "duplicate migration id [%s]", m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}

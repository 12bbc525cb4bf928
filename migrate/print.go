package migrate

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/titpetric/persist/db"
)

// Print writes the statements of every up script to w without
// touching a database
func Print(w io.Writer, migrations []SqlMigration) error {
	printQuery := func(idx int, query string) error {
		_, err := fmt.Fprintf(w, "\n-- Statement index: %d\n%s\n\n", idx, query)
		return err
	}

	for _, migration := range migrations {
		if _, err := fmt.Fprintf(w, "-- Migration: %s (md5 %s)\n", migration.ID, migration.Up.MD5); err != nil {
			return errors.WithStack(err)
		}
		for idx, stmt := range db.Statements(migration.Up.SQL) {
			if err := printQuery(idx, stmt); err != nil {
				return errors.Wrapf(err, "error printing migration: %s", migration.ID)
			}
		}
	}
	return nil
}

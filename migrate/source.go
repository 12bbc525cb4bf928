package migrate

import (
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	upFilename   = "up.sql"
	downFilename = "down.sql"
	upSuffix     = ".up.sql"
	downSuffix   = ".down.sql"
)

// FromDir loads migrations from a directory on disk
func FromDir(dir string) ([]SqlMigration, error) {
	return FromFS(os.DirFS(dir), ".")
}

// FromFS loads migrations from dir inside fsys, sorted by id.
//
// A migration is either a directory named after its id holding up.sql
// and an optional down.sql, or a pair of files `<id>.up.sql` and
// an optional `<id>.down.sql`. Other files are ignored.
func FromFS(fsys fs.FS, dir string) ([]SqlMigration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrapf(ErrFileSystem, "reading %s: %s", dir, err)
	}

	readFile := func(filename string) (string, error) {
		contents, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return "", errors.Wrapf(ErrFileSystem, "reading %s: %s", filename, err)
		}
		return string(contents), nil
	}

	migrations := map[string]*Migration{}
	downs := map[string]string{}

	add := func(m *Migration) error {
		if _, ok := migrations[m.ID]; ok {
			return errors.Wrapf(ErrWrongMigrationSet, "duplicate migration id [%s]", m.ID)
		}
		if strings.TrimSpace(m.Up) == "" {
			return errors.Wrapf(ErrWrongMigrationSet, "migration [%s] has an empty up script", m.ID)
		}
		migrations[m.ID] = m
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		filename := path.Join(dir, name)

		if entry.IsDir() {
			up, err := readFile(path.Join(filename, upFilename))
			if err != nil {
				if _, statErr := fs.Stat(fsys, path.Join(filename, upFilename)); errors.Is(statErr, fs.ErrNotExist) {
					return nil, errors.Wrapf(ErrWrongMigrationSet, "migration [%s] has no %s", name, upFilename)
				}
				return nil, err
			}
			down := ""
			if _, err := fs.Stat(fsys, path.Join(filename, downFilename)); err == nil {
				if down, err = readFile(path.Join(filename, downFilename)); err != nil {
					return nil, err
				}
			}
			if err := add(&Migration{ID: name, Up: up, Down: down}); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case strings.HasSuffix(name, upSuffix):
			up, err := readFile(filename)
			if err != nil {
				return nil, err
			}
			if err := add(&Migration{ID: strings.TrimSuffix(name, upSuffix), Up: up}); err != nil {
				return nil, err
			}
		case strings.HasSuffix(name, downSuffix):
			down, err := readFile(filename)
			if err != nil {
				return nil, err
			}
			downs[strings.TrimSuffix(name, downSuffix)] = down
		}
	}

	for id, down := range downs {
		m, ok := migrations[id]
		if !ok {
			return nil, errors.Wrapf(ErrWrongMigrationSet, "down script for [%s] has no up script", id)
		}
		m.Down = down
	}

	ids := make([]string, 0, len(migrations))
	for id := range migrations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]SqlMigration, len(ids))
	for k, id := range ids {
		result[k] = NewSqlMigration(*migrations[id])
	}
	if err := checkDuplicateIDs(result); err != nil {
		return nil, err
	}
	return result, nil
}

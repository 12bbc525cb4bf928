package docstore

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/titpetric/persist/db"
)

// Store persists documents of type T as (id, version, data) rows.
// Every operation runs on the passed db.Conn, so a Store can be used
// with a Pool or inside a Tx.
type Store[T any] struct {
	queries *Queries
	codec   Codec[T]
}

// NewStore produces a Store over the queries with the JSON codec
func NewStore[T any](queries *Queries) *Store[T] {
	return &Store[T]{
		queries: queries,
		codec:   JSONCodec[T]{},
	}
}

// WithCodec replaces the codec used for the data column
func (s *Store[T]) WithCodec(codec Codec[T]) *Store[T] {
	s.codec = codec
	return s
}

// Queries returns the statements the store uses
func (s *Store[T]) Queries() *Queries {
	return s.queries
}

func (s *Store[T]) CreateTableIfNotExists(ctx context.Context, conn db.Conn) error {
	_, err := conn.Execute(ctx, s.queries.CreateTableSQL)
	return errors.Wrapf(err, "error creating table %s", s.queries.QualifiedTableName)
}

func (s *Store[T]) DropTableIfExists(ctx context.Context, conn db.Conn, cascade bool) error {
	query := s.queries.DropTableSQL
	if cascade {
		query = s.queries.DropTableCascadeSQL
	}
	_, err := conn.Execute(ctx, query)
	return errors.Wrapf(err, "error dropping table %s", s.queries.QualifiedTableName)
}

func (s *Store[T]) CountAll(ctx context.Context, conn db.Conn) (int64, error) {
	var count int64
	err := conn.Get(ctx, &count, s.queries.CountAllSQL)
	return count, errors.Wrap(err, "error counting rows")
}

func (s *Store[T]) ExistsByID(ctx context.Context, conn db.Conn, id IDType) (bool, error) {
	var exists bool
	err := conn.Get(ctx, &exists, s.queries.ExistsByIDSQL, id)
	return exists, errors.Wrapf(err, "error checking id %d", id)
}

// FetchAll returns all rows ordered by id
func (s *Store[T]) FetchAll(ctx context.Context, conn db.Conn) ([]Model[T], error) {
	return s.FetchAllWithSQL(ctx, conn, s.queries.FindAllSQL)
}

// FetchAllWithSQL runs a custom select which must return id, version
// and data columns in that order
func (s *Store[T]) FetchAllWithSQL(ctx context.Context, conn db.Conn, query string, args ...interface{}) ([]Model[T], error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error fetching rows")
	}
	defer rows.Close()

	result := []Model[T]{}
	for rows.Next() {
		model, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, model)
	}
	return result, errors.Wrap(rows.Err(), "error fetching rows")
}

func (s *Store[T]) FetchOneOptionalByID(ctx context.Context, conn db.Conn, id IDType) (*Model[T], error) {
	return s.FetchOneOptionalWithSQL(ctx, conn, s.queries.FindByIDSQL, id)
}

// FetchOneByID returns ErrResultNotFound when no row has the id
func (s *Store[T]) FetchOneByID(ctx context.Context, conn db.Conn, id IDType) (Model[T], error) {
	model, err := s.FetchOneOptionalByID(ctx, conn, id)
	if err != nil {
		return Model[T]{}, err
	}
	if model == nil {
		return Model[T]{}, errors.Wrapf(ErrResultNotFound, "id %d", id)
	}
	return *model, nil
}

// FetchOneOptionalWithSQL returns the first row of a custom select, or nil
func (s *Store[T]) FetchOneOptionalWithSQL(ctx context.Context, conn db.Conn, query string, args ...interface{}) (*Model[T], error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error fetching row")
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errors.Wrap(rows.Err(), "error fetching row")
	}
	model, err := s.scan(rows)
	if err != nil {
		return nil, err
	}
	return &model, nil
}

// LockByDataField selects and row-locks the first document whose
// data field `key` equals value. Dialects without row locks only select.
func (s *Store[T]) LockByDataField(ctx context.Context, conn db.Conn, key, value string) (*Model[T], error) {
	query, err := s.queries.FindByDataFieldSQL(key, true)
	if err != nil {
		return nil, err
	}
	return s.FetchOneOptionalWithSQL(ctx, conn, query, value)
}

func (s *Store[T]) Save(ctx context.Context, conn db.Conn, model NewModel[T]) (Model[T], error) {
	raw, err := s.codec.Encode(model.Data)
	if err != nil {
		return Model[T]{}, err
	}
	id, err := conn.Insert(ctx, s.queries.SaveSQL, model.Version, string(raw))
	if err != nil {
		return Model[T]{}, errors.Wrapf(err, "error saving into %s", s.queries.QualifiedTableName)
	}
	return Model[T]{
		ID:      id,
		Version: model.Version,
		Data:    model.Data,
	}, nil
}

// Update writes the document and increments its version. An
// OptimisticLockError is returned if the stored version differs.
func (s *Store[T]) Update(ctx context.Context, conn db.Conn, model Model[T]) (Model[T], error) {
	raw, err := s.codec.Encode(model.Data)
	if err != nil {
		return Model[T]{}, err
	}
	next := model.Version + 1
	affected, err := conn.Execute(ctx, s.queries.UpdateSQL, next, string(raw), model.ID, model.Version)
	if err != nil {
		return Model[T]{}, errors.Wrapf(err, "error updating id %d", model.ID)
	}
	if affected == 0 {
		return Model[T]{}, s.lockError(model)
	}
	model.Version = next
	return model, nil
}

// Delete removes the document if its stored version matches
func (s *Store[T]) Delete(ctx context.Context, conn db.Conn, model Model[T]) (Model[T], error) {
	affected, err := conn.Execute(ctx, s.queries.DeleteSQL, model.ID, model.Version)
	if err != nil {
		return Model[T]{}, errors.Wrapf(err, "error deleting id %d", model.ID)
	}
	if affected == 0 {
		return Model[T]{}, s.lockError(model)
	}
	return model, nil
}

func (s *Store[T]) DeleteAll(ctx context.Context, conn db.Conn) (int64, error) {
	affected, err := conn.Execute(ctx, s.queries.DeleteAllSQL)
	return affected, errors.Wrap(err, "error deleting rows")
}

func (s *Store[T]) DeleteByID(ctx context.Context, conn db.Conn, id IDType) (int64, error) {
	affected, err := conn.Execute(ctx, s.queries.DeleteByIDSQL, id)
	return affected, errors.Wrapf(err, "error deleting id %d", id)
}

func (s *Store[T]) lockError(model Model[T]) error {
	return &OptimisticLockError{
		Table:   s.queries.QualifiedTableName,
		ID:      model.ID,
		Version: model.Version,
	}
}

func (s *Store[T]) scan(rows *sqlx.Rows) (Model[T], error) {
	var (
		model Model[T]
		raw   []byte
	)
	if err := rows.Scan(&model.ID, &model.Version, &raw); err != nil {
		return model, errors.Wrap(err, "error scanning row")
	}
	data, err := s.codec.Decode(raw)
	if err != nil {
		return model, errors.Wrapf(err, "id %d", model.ID)
	}
	model.Data = data
	return model, nil
}

package docstore

type (
	// IDType is the row id of a stored document
	IDType = int64

	// VersionType is the optimistic lock version of a stored document
	VersionType = int32

	// Model is a persisted document
	Model[T any] struct {
		ID      IDType
		Version VersionType
		Data    T
	}

	// NewModel is a document which has not been saved yet
	NewModel[T any] struct {
		Version VersionType
		Data    T
	}
)

// New wraps data into a NewModel with version zero
func New[T any](data T) NewModel[T] {
	return NewModel[T]{Data: data}
}

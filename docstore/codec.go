package docstore

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Codec converts documents to and from the stored representation
type Codec[T any] interface {
	Encode(data T) ([]byte, error)
	Decode(raw []byte) (T, error)
}

// JSONCodec stores documents as JSON
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(data T) ([]byte, error) {
	raw, err := json.Marshal(data)
	return raw, errors.Wrap(err, "error encoding document")
}

func (JSONCodec[T]) Decode(raw []byte) (T, error) {
	var data T
	err := json.Unmarshal(raw, &data)
	return data, errors.Wrap(err, "error decoding document")
}

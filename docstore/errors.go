package docstore

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrResultNotFound is returned when a required row does not exist
var ErrResultNotFound = errors.New("result not found")

// OptimisticLockError is returned when an update or delete matched no row
// with the expected id and version
type OptimisticLockError struct {
	Table   string
	ID      IDType
	Version VersionType
}

func (e *OptimisticLockError) Error() string {
	return fmt.Sprintf("optimistic lock error: table [%s], id [%d], version [%d] not found", e.Table, e.ID, e.Version)
}

package history

import (
	"errors"
	"fmt"
)

// ErrFailedToConnect is returned when the database cannot be reached after
// all retry attempts.
var ErrFailedToConnect = errors.New("history: failed to connect to storage")

// StorageError wraps a storage operation failure.
type StorageError struct {
	Operation string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("history: %s failed: %v", e.Operation, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

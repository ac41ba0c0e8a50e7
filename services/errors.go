package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by OrderStore implementations. The lifecycle
// service branches on these with errors.Is; anything else is a storage
// failure and propagates unchanged.
var (
	// ErrNotFound means the referenced order or sub-step does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateRecord means a row guarded by a unique constraint already
	// exists. FinalizeOrder relies on it to stay exactly-once when two
	// completions race.
	ErrDuplicateRecord = errors.New("record already exists")
)

// ValidationError reports a missing or invalid field on a create request.
// Nothing is written when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StorageError wraps a persistence failure with the operation that caused it
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

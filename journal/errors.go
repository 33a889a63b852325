package journal

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned (wrapped) when no record has the given id.
var ErrNotFound = errors.New("prediction not found")

// DuplicateError rejects an Append whose forecast id already exists.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("prediction %s already recorded", e.ID)
}

// AlreadyEvaluatedError rejects a second evaluation of the same record.
type AlreadyEvaluatedError struct {
	ID string
}

func (e *AlreadyEvaluatedError) Error() string {
	return fmt.Sprintf("prediction %s already evaluated", e.ID)
}

// CorruptStoreError means the persisted history violates an invariant
// (unparseable payload, duplicate ids, impossible status). The store
// refuses to operate rather than guessing at repairs.
type CorruptStoreError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptStoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt prediction store %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt prediction store %s: %s", e.Path, e.Reason)
}

func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

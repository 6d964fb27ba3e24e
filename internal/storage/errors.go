package storage

import (
	"errors"
	"fmt"
)

// ErrStorage matches every StorageError through errors.Is.
var ErrStorage = errors.New("storage error")

// ErrNotFound is returned by GetEntry for an unknown id.
var ErrNotFound = errors.New("entry not found")

// StorageError reports a failure of the underlying medium: unreachable,
// write failed or schema mismatch. Nothing is retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

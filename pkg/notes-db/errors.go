package notesdb

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Update and Delete in strict mode when no note has the
// requested id.
var ErrNotFound = errors.New("note not found")

// StorageError reports a failure to open, read or write the notes database.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("notes storage: %s %s: %s", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

func storageError(op string, path string, err error) error {
	return &StorageError{Op: op, Path: path, Err: err}
}

package graph

import "errors"

// ErrNotFound reports that a referenced task does not exist. Callers
// surface it as a client-addressable error, never a server fault.
var ErrNotFound = errors.New("task not found")

// StorageError wraps a fault from the underlying store. It is a
// server-side failure and is never retried automatically.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

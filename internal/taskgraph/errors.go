package taskgraph

import "errors"

// Service-level errors. Together with graph.ErrNotFound and
// graph.StorageError they form the caller-distinguishable taxonomy:
// validation, not-found, storage, timeout.
var (
	ErrEmptyTitle     = errors.New("title cannot be empty")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrInvalidRelType = errors.New("invalid relationship type")
	ErrWipeForbidden  = errors.New("bulk wipe is restricted to non-production environments")
	ErrTimeout        = errors.New("operation timed out")
)

// IsValidation reports whether err is a malformed-input rejection.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyTitle) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidRelType) ||
		errors.Is(err, ErrWipeForbidden)
}

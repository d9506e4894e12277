package registrar

import (
	"errors"
	"fmt"
)

// Error taxonomy. The first four kinds are user-correctable and are surfaced
// with their message intact; ErrStorageFailure carries backend detail that is
// logged server-side and never exposed across the API boundary.
var (
	ErrDuplicateKey   = errors.New("a request with this public key already exists")
	ErrNotFound       = errors.New("request not found")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrStorageFailure = errors.New("storage failure")
)

// ValidationError reports a missing required submission field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing required field: " + e.Field
}

// StorageFailure wraps a backend error in the storage-failure taxonomy kind,
// preserving the cause for server-side logging.
func StorageFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

// UserCorrectable reports whether err belongs to one of the taxonomy kinds a
// caller can act on (validation, duplicate key, not found, invalid status).
func UserCorrectable(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr) ||
		errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidStatus)
}

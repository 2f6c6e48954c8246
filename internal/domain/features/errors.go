package features

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrMissingField   = errors.New("missing field")
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// MissingFieldError reports a categorical field needed by a one-hot slot
// that is absent from the request.
type MissingFieldError struct {
	Field string
	Slot  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q required by feature %q", e.Field, e.Slot)
}

// Is matches ErrMissingField.
func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// SchemaMismatchError reports an empty or malformed feature schema.
type SchemaMismatchError struct {
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return "schema mismatch: " + e.Reason
}

// Is matches ErrSchemaMismatch.
func (e *SchemaMismatchError) Is(target error) bool { return target == ErrSchemaMismatch }

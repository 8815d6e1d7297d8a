// models/errors.go
package models

import "fmt"

// ValidationError reports malformed or out-of-range input: negative
// amounts, non-contiguous commission slabs, unknown enum values. It is
// always surfaced to the caller, never silently corrected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports an attempted second open live session for the same
// creator.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError reports an operation on a record that does not exist or is
// no longer in the expected state (e.g. an already-closed session).
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// InvalidStateError reports a transition that is impossible in the current
// state, such as a clock-out timestamp before the clock-in.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

// ResolutionError means the caller is signed in but the profile lookup
// exhausted its retries; the caller must treat this as not-authorized, not
// as a silent guest role.
type ResolutionError struct {
	Attempts int
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("profile resolution failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Package errors provides the shared error taxonomy for the minutes pipeline.
//
// Sentinel errors describe domain conditions (a missing review session, an
// invalid edit). PipelineError and ErrorCode classify failures raised by the
// optional backends so callers can log them and fall back to heuristics.
//
// Usage:
//
//	import mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
//
//	if mnerrors.IsNotFound(err) {
//	    // session expired or never existed
//	}
package errors

import "errors"

// Domain errors.
var (
	// ErrNotFound indicates the requested session or artifact was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input or a record that fails validation.
	ErrValidation = errors.New("validation error")

	// ErrInvalidState indicates the operation is not valid for the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrBackendFailed indicates an external backend reported a failure.
	ErrBackendFailed = errors.New("backend failed")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidState reports whether any error in err's chain is ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsBackendFailed reports whether any error in err's chain is ErrBackendFailed.
func IsBackendFailed(err error) bool {
	return errors.Is(err, ErrBackendFailed)
}

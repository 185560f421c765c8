package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every usecase. Attach detail by wrapping
// (fmt.Errorf("%w: ...", ErrX)) and match with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrValidation         = errors.New("validation error")
	ErrStorage            = errors.New("storage error")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
)

// Document gate failures.
var (
	ErrNoDocuments         = fmt.Errorf("%w: no documents", ErrPreconditionFailed)
	ErrDocumentsUnverified = fmt.Errorf("%w: documents unverified", ErrPreconditionFailed)
)

func NotFound(what string) error { return fmt.Errorf("%w: %s", ErrNotFound, what) }

func Validation(msg string) error { return fmt.Errorf("%w: %s", ErrValidation, msg) }

func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// Storage wraps an infrastructure failure. A nil err yields nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// Known reports whether err already carries one of the sentinels above.
func Known(err error) bool {
	for _, s := range []error{ErrNotFound, ErrInvalidState, ErrPreconditionFailed, ErrValidation,
		ErrStorage, ErrForbidden, ErrUnauthorized, ErrConflict} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

package core

import "github.com/pkg/errors"

type (
	// FieldError pins an error message to one struct field, for per-field
	// API error payloads.
	FieldError struct {
		Field string
		Error string
	}

	// ValidationError is a request-level validation failure. Fields carries
	// the per-field breakdown when there is one; Err alone covers
	// whole-request failures.
	ValidationError struct {
		Err    error
		Fields []FieldError
	}
)

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown marks an error as unrecoverable for the running process. The
// HTTP error handler turns it into a graceful stop.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown reports whether err, at its cause, asks for a shutdown.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

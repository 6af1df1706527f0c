package songs

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Error taxonomy shared by the services, the HTTP transport and the client.
var (
	ErrNotFound    = errors.New("song not found")
	ErrUnavailable = errors.New("service unavailable")
	ErrValidation  = errors.New("validation failed")
)

// ValidationError reports invalid input. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// FieldErrors returns the message for each invalid field, keyed by its JSON name.
// It is empty when the failure was not field-specific.
func (e *ValidationError) FieldErrors() map[string]string {
	var fieldErrs validation.Errors
	if !errors.As(e.Err, &fieldErrs) {
		return nil
	}
	out := make(map[string]string, len(fieldErrs))
	for field, err := range fieldErrs {
		out[field] = err.Error()
	}
	return out
}

// invalid builds a ValidationError from a plain message.
func invalid(msg string) error {
	return &ValidationError{Err: errors.New(msg)}
}

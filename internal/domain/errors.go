package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a missing or malformed command parameter.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown employee, team, session or command.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a request that contradicts current state,
	// such as a duplicate hire or a second termination.
	ErrConflict = errors.New("conflict")
	// ErrExternalService marks a failed call to a collaborator.
	ErrExternalService = errors.New("external service failure")
	// ErrInternal marks an unexpected fault.
	ErrInternal = errors.New("internal error")
)

// UserError carries a message that is safe to show to the end user.
// It unwraps to one of the sentinel errors above.
type UserError struct {
	Kind    error
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Kind
}

// Validationf returns a UserError of kind ErrValidation.
func Validationf(format string, args ...any) error {
	return &UserError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf returns a UserError of kind ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return &UserError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf returns a UserError of kind ErrConflict.
func Conflictf(format string, args ...any) error {
	return &UserError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// UserMessage extracts the user-facing message from err, falling back to
// fallback for errors that do not carry one.
func UserMessage(err error, fallback string) string {
	var ue *UserError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return fallback
}

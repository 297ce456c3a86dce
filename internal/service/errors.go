package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrNotOpen           = errors.New("event is not open for RSVPs")
	ErrNotEditable       = errors.New("rsvp is not editable")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotCompleted      = errors.New("event is not completed")
	ErrDuplicateRSVP     = errors.New("rsvp already submitted for this event, use your confirmation code to modify it")
	ErrForbidden         = errors.New("confirmation code does not match")
	ErrUnauthorized      = errors.New("invalid username or password")
)

// ValidationError reports a bad or missing input field.
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

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

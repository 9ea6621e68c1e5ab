package kanban

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an application is missing or does not belong to the user.
var ErrNotFound = errors.New("application not found")

// ErrInvalidTransition matches every *TransitionError through errors.Is.
var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError names the edge the state machine rejected.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s → %s is not allowed", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

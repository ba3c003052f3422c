package realtime

import (
	"errors"
)

// ErrorKind classifies failures surfaced by a session.
type ErrorKind string

const (
	KindAuthRejected      ErrorKind = "AuthRejected"
	KindValidationFailed  ErrorKind = "ValidationFailed"
	KindNotFound          ErrorKind = "NotFound"
	KindUnauthorized      ErrorKind = "Unauthorized"
	KindPersistenceFailed ErrorKind = "PersistenceFailed"
)

var (
	ErrAuthRejected      = &Error{Kind: KindAuthRejected}
	ErrValidationFailed  = &Error{Kind: KindValidationFailed}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrPersistenceFailed = &Error{Kind: KindPersistenceFailed}

	ErrAlreadyRegistered = errors.New("connection already registered")
	ErrNotRegistered     = errors.New("connection not registered")
)

// Error is a session failure. Message is what the client sees; Err is the cause
// kept for logging.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

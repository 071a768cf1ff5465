package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors. The kind decides the HTTP status.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal error")
)

// Error is an API failure tagged with the operation that produced it.
// Message is safe to show to clients for 4xx kinds.
type Error struct {
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind builds a client-facing error of the given kind.
func NewKind(op string, kind error, message string) error {
	return &Error{Op: op, Kind: kind, Message: message}
}

// WrapKind is NewKind with an underlying cause.
func WrapKind(op string, kind error, message string, err error) error {
	return &Error{Op: op, Kind: kind, Message: message, Err: err}
}

// Wrap marks err as an internal failure of op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: ErrInternal, Err: err}
}

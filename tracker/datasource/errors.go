package datasource

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// ConnectionError is fatal and only raised while initializing a datasource.
	ConnectionError ErrorKind = iota + 1
	WriteError
	ReadError
)

func (kind ErrorKind) String() string {
	switch kind {
	case ConnectionError:
		return "ConnectionError"
	case WriteError:
		return "WriteError"
	case ReadError:
		return "ReadError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(kind))
	}
}

type OperationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

var (
	ErrConnection = &OperationError{Kind: ConnectionError}
	ErrWrite      = &OperationError{Kind: WriteError}
	ErrRead       = &OperationError{Kind: ReadError}
)

func (e *OperationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%v: %v", e.Message, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is matches any OperationError of the same kind, so errors.Is(err, ErrRead)
// works regardless of message or cause.
func (e *OperationError) Is(target error) bool {
	var other *OperationError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

func NewError(kind ErrorKind, message string, cause error) *OperationError {
	return &OperationError{
		Kind:    kind,
		Message: message,
		Err:     cause,
	}
}

// KindOf returns the ErrorKind carried by err, or 0 when err is not an
// OperationError.
func KindOf(err error) ErrorKind {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	return 0
}

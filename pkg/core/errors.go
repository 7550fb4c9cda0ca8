package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a repository failure. Kinds are themselves errors so
// callers can match with errors.Is(err, core.ErrConstraint).
type ErrorKind string

// Failure kinds signalled by the connection and its collaborators.
const (
	// ErrNotFound means a referenced object, type or version series id does
	// not resolve.
	ErrNotFound ErrorKind = "not found"

	// ErrInvalidArgument means a caller-supplied parameter is structurally
	// wrong (wrong base type, negative skip count, missing mandatory id).
	ErrInvalidArgument ErrorKind = "invalid argument"

	// ErrConstraint is a business-rule violation: a specialization of
	// ErrInvalidArgument (type not allowed in parent, required property
	// missing, non-empty folder deletion, ...).
	ErrConstraint ErrorKind = "constraint violation"

	// ErrNameConstraint is a naming conflict, also a specialization of
	// ErrInvalidArgument.
	ErrNameConstraint ErrorKind = "name constraint violation"

	// ErrConflict means the supplied change token does not match the current
	// object state (optimistic concurrency failure).
	ErrConflict ErrorKind = "update conflict"

	// ErrVersioning means the operation is invalid for the object's position
	// in its version series.
	ErrVersioning ErrorKind = "versioning error"

	// ErrNotSupported means an optional repository capability is disabled.
	ErrNotSupported ErrorKind = "not supported"

	// ErrFilterInvalid means a malformed property or rendition filter string.
	ErrFilterInvalid ErrorKind = "filter invalid"

	// ErrStreamNotSupported means the type forbids a content stream.
	ErrStreamNotSupported ErrorKind = "content stream not supported"

	// ErrContentAlreadyExists means a content stream is present and
	// overwrite was not requested.
	ErrContentAlreadyExists ErrorKind = "content already exists"

	// ErrStorage wraps a backend persistence failure. Not recoverable at
	// this layer.
	ErrStorage ErrorKind = "storage failure"
)

// Error implements the error interface so kinds can act as match targets.
func (k ErrorKind) Error() string { return string(k) }

// Error is the single error type of the repository layer. It carries a kind
// from the taxonomy above, a human-readable message and an optional cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches against an ErrorKind target. Constraint and name-constraint
// errors additionally match ErrInvalidArgument, mirroring their
// specialization relationship.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	if !ok {
		return false
	}
	if e.Kind == k {
		return true
	}
	if k == ErrInvalidArgument {
		return e.Kind == ErrConstraint || e.Kind == ErrNameConstraint
	}
	return false
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around a cause.
func Wrap(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// HasKind reports whether err carries the given kind anywhere in its chain.
func HasKind(err error, kind ErrorKind) bool {
	return errors.Is(err, kind)
}

package failure

import (
	"errors"
	"fmt"
)

// Kind tags an error with the class of rule it violated.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindInvalidState       Kind = "invalid_state"
	KindInvalidTransition  Kind = "invalid_transition"
	KindReferenceExhausted Kind = "reference_exhausted"
	KindInternal           Kind = "internal"
)

// Error is the single error shape produced by the domain and application layers.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	cause   error
}

// Kind-only sentinels match any error of the same kind via errors.Is.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidState       = &Error{Kind: KindInvalidState}
	ErrInvalidTransition  = &Error{Kind: KindInvalidTransition}
	ErrReferenceExhausted = &Error{Kind: KindReferenceExhausted}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a validation error; details map field names to messages.
func Validation(message string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// NotFound reports a missing (or not owned) entity by name.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Internal wraps an unexpected error so callers can still unwrap the cause.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: cause}
}

// Wrap attaches a cause to a copy of e.
func (e *Error) Wrap(cause error) *Error {
	clone := *e
	clone.cause = cause
	return &clone
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches kind-only sentinels (empty Message) against any error of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" {
		return t.Kind == e.Kind
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// DetailsOf returns field details carried by err, if any.
func DetailsOf(err error) map[string]string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Details
	}
	return nil
}

// UserFacing reports whether err's message may be shown verbatim to the caller.
func UserFacing(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindNotFound, KindInvalidState, KindInvalidTransition:
		return true
	default:
		return false
	}
}

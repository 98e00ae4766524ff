package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failure independently of its message
type Kind int

const (
	// KindInternal is the zero value so unclassified errors surface as internal failures
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindInvalidCredentials
	KindUnauthorized
	KindTokenExpired
	KindUnauthenticated
	KindConflict
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthorized:
		return "unauthorized"
	case KindTokenExpired:
		return "token_expired"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindConflict:
		return "conflict"
	case KindCanceled:
		return "canceled"
	default:
		return "internal_error"
	}
}

// Messages shared by several services
const (
	MsgSomethingWentWrong = "Something went wrong! Try again later."
	MsgRequestCanceled    = "request canceled"
)

// Error is the typed failure returned by every service operation
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same kind, so callers can write
// errors.Is(err, apperrors.NotFound(""))-style checks against sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps the cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// InvalidInput creates an InvalidInput error
func InvalidInput(message string) *Error { return New(KindInvalidInput, message) }

// NotFound creates a NotFound error
func NotFound(message string) *Error { return New(KindNotFound, message) }

// InvalidCredentials creates an InvalidCredentials error
func InvalidCredentials(message string) *Error { return New(KindInvalidCredentials, message) }

// Unauthorized creates an Unauthorized error
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// TokenExpired creates a TokenExpired error
func TokenExpired(message string) *Error { return New(KindTokenExpired, message) }

// Unauthenticated creates an Unauthenticated error
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

// Conflict creates a Conflict error
func Conflict(message string) *Error { return New(KindConflict, message) }

// Internal creates an InternalError wrapping the storage cause
func Internal(message string, err error) *Error { return Wrap(KindInternal, message, err) }

// FromStore converts an infrastructure error into a typed one. Context
// cancellation keeps its own kind; anything else becomes an internal error
// with the generic message.
func FromStore(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindCanceled, MsgRequestCanceled, err)
	}
	return Internal(MsgSomethingWentWrong, err)
}

// KindOf classifies any error
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	return KindInternal
}

// MessageOf returns the user-facing message of err
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if KindOf(err) == KindCanceled {
		return MsgRequestCanceled
	}
	return MsgSomethingWentWrong
}

// IsKind reports whether err is classified as kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

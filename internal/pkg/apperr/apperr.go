// Package apperr defines the typed errors returned by the core services.
// The HTTP adapter maps each Kind onto a status code; other callers
// inspect the Kind with Is or errors.As.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is a missing or malformed form field.
	KindValidation
	// KindNotFound is an id that does not resolve in the store.
	KindNotFound
	// KindLocationUnavailable covers denied, failed and unsupported position fixes.
	KindLocationUnavailable
	// KindMapInit means the rendering surface could not be mounted.
	KindMapInit
	// KindBadRequest is a malformed request that is not a form error.
	KindBadRequest
	// KindInternal is an unexpected failure (storage, broker, mail).
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindLocationUnavailable:
		return "location_unavailable"
	case KindMapInit:
		return "map_init_error"
	case KindBadRequest:
		return "bad_request"
	case KindInternal:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Error is a domain error carrying a Kind.
type Error struct {
	Kind    Kind
	Message string
	Op      string
	Err     error
	Details map[string]string
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus returns the status code the REST layer should answer with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindLocationUnavailable:
		return http.StatusServiceUnavailable
	case KindMapInit, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WithOp sets the failing operation.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails attaches per-field details (used by validation errors).
func (e *Error) WithDetails(details map[string]string) *Error {
	e.Details = details
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }
func BadRequest(message string) *Error { return New(KindBadRequest, message) }
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}
func LocationUnavailable(message string, err error) *Error {
	return Wrap(KindLocationUnavailable, message, err)
}
func MapInit(err error) *Error {
	return Wrap(KindMapInit, "map surface failed to initialise", err)
}

// GetKind returns the Kind of the first *Error in err's chain.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

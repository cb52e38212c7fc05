// Package apperr defines the error taxonomy shared by the core services.
// Handlers map a Kind to an HTTP status and render the stable message; raw
// internal error text is logged but never the only signal of failure kind.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindValidation  Kind = iota // malformed input
	KindConflict                // AlreadyCheckedIn, DuplicateEvidence
	KindNotFound                // NoOpenCheckIn, unknown record
	KindForbidden               // tenant isolation or role denial
	KindEntitlement             // feature not licensed or quota exceeded
	KindStorage                 // blob store failure
	KindPersistence             // database failure
	KindIntegrity               // detected data-integrity anomaly
)

// Error carries a stable user-facing message, a Kind, and an optional cause.
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

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with a stable message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a stable message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindPersistence for
// unclassified errors so that unknown failures surface as 500s.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindPersistence
}

// MessageOf returns the stable message for err without the internal cause.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error to the status code of the API contract.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindEntitlement:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

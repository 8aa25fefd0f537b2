package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so the HTTP layer can pick a status code without
// string-matching messages.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
	KindStateConflict
	KindInsufficientFunds
	KindDuplicateVote
	KindUpstream
)

// Error is the application error carried from services up to handlers.
// Message is safe to return to clients; Err keeps the wrapped cause.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports a missing or malformed required field.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown market, option, fixture, or user.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// StateConflict reports an action not permitted in the entity's current status.
func StateConflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindStateConflict, Message: fmt.Sprintf(format, args...)}
}

// InsufficientFunds reports a debit exceeding the account balance.
func InsufficientFunds(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: fmt.Sprintf(format, args...)}
}

// DuplicateVote reports an identity that has already voted.
func DuplicateVote(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDuplicateVote, Message: fmt.Sprintf(format, args...)}
}

// Upstream reports an unavailable or unusable external provider.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// KindOf extracts the Kind from an error chain, KindUnexpected if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ClientMessage returns the user-facing message for err. Unexpected errors
// get a generic message so internals never leak to clients.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInsufficientFunds, KindDuplicateVote:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindStateConflict:
		return http.StatusForbidden
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

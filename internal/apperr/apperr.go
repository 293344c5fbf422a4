// Package apperr classifies request failures so the HTTP layer can map them
// to a status code without knowing which component produced them.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the category of a failure.
type Kind int

const (
	// KindInternal covers dependency failures and unusable results (500).
	KindInternal Kind = iota
	// KindValidation is a malformed or missing request field (400).
	KindValidation
	// KindNotFound is a referenced identity that does not exist (404).
	KindNotFound
	// KindConflict is a write that would violate a uniqueness rule (409).
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error carries a user-facing message, its Kind and an optional cause.
// The cause's text is appended to the message, so dependency failures read
// "Failed to fetch entries: <cause>".
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation returns a 400-class error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// NotFound returns a 404-class error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Conflict wraps err as a 409-class error.
func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

// Dependency wraps a failed store or API call as a 500-class error.
func Dependency(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain.
// Errors that were never classified are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps err to the status code the API responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

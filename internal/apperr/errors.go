// Package apperr defines the error taxonomy shared by every domain
// component (stores, cache, selector, moderation, lifecycle) and the
// HTTP layer that translates it into status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for HTTP translation and logging.
type Code string

const (
	CodeValidation        Code = "VALIDATION"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeCensorship        Code = "CENSORSHIP"
	CodeTextGenUnavailable Code = "TEXT_GEN_UNAVAILABLE"
	CodeCacheUnavailable  Code = "CACHE_UNAVAILABLE"
	CodePayloadError      Code = "PAYLOAD_ERROR"
	CodeUnknown           Code = "UNKNOWN"
)

// httpStatus maps each taxonomy code to the status the HTTP layer returns.
var httpStatus = map[Code]int{
	CodeValidation:         http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeCensorship:         http.StatusNotAcceptable,
	CodeTextGenUnavailable: http.StatusServiceUnavailable,
	CodeCacheUnavailable:   http.StatusServiceUnavailable,
	CodePayloadError:       http.StatusBadRequest,
	CodeUnknown:            http.StatusInternalServerError,
}

// Error is the typed error every domain component returns. Repository-layer
// failures are wrapped into it at the boundary (§7: "repository-layer errors
// wrap into a single Repository category for services").
type Error struct {
	Code    Code
	Message string
	Word    string // set only for CodeCensorship: the offending word
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus returns the status code the HTTP layer should use for e.
func (e *Error) HTTPStatus() int {
	if status, ok := httpStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func newErr(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Validation wraps a bad payload, invariant violation, frozen-field update,
// or negative clock jump.
func Validation(msg string) *Error { return newErr(CodeValidation, msg) }

// Validationf is Validation with fmt.Sprintf formatting.
func Validationf(format string, args ...interface{}) *Error {
	return newErr(CodeValidation, fmt.Sprintf(format, args...))
}

// NotFound wraps a missing entity lookup.
func NotFound(msg string) *Error { return newErr(CodeNotFound, msg) }

// NotFoundf is NotFound with fmt.Sprintf formatting.
func NotFoundf(format string, args ...interface{}) *Error {
	return newErr(CodeNotFound, fmt.Sprintf(format, args...))
}

// Conflict wraps a unique-constraint breach on an upsert race.
func Conflict(msg string) *Error { return newErr(CodeConflict, msg) }

// Censorship wraps a moderation rejection, carrying the offending word.
func Censorship(word string) *Error {
	return &Error{Code: CodeCensorship, Message: "abusive content detected", Word: word}
}

// TextGenUnavailable wraps a downstream text-generation failure or timeout.
func TextGenUnavailable(msg string) *Error { return newErr(CodeTextGenUnavailable, msg) }

// CacheUnavailable wraps a transient, retry-safe KV failure.
func CacheUnavailable(msg string) *Error { return newErr(CodeCacheUnavailable, msg) }

// PayloadError wraps a rejected multipart/image upload.
func PayloadError(msg string) *Error { return newErr(CodePayloadError, msg) }

// Wrap classifies an opaque lower-layer error (e.g. a raw pgx/redis error)
// into the taxonomy, preserving it as the unwrap chain's cause.
func Wrap(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Message: msg, cause: cause}
}

// Unknown wraps any error that does not fit a more specific category.
func Unknown(cause error) *Error {
	return &Error{Code: CodeUnknown, Message: "unexpected error", cause: cause}
}

// As extracts an *Error from err, if any layer in its chain is one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the taxonomy code for err, defaulting to CodeUnknown for
// errors that were never classified.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeUnknown
}

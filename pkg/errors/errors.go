// Package errors gives schematic's failures a machine-readable [Code].
//
// The CLI prints [UserMessage] and the HTTP server answers with
// [HTTPStatus], so a failure deep in a source or the pipeline reaches the
// user with the same classification on both surfaces:
//
//	return errors.Wrap(errors.ErrCodeNetwork, err, "list collections from %s", url)
//
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // bad -f value
//	}
//
// Codes are plain strings and appear in JSON error bodies.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"   // 400
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"  // 400, unknown output format
	ErrCodeInvalidSource  Code = "INVALID_SOURCE"  // 400, no or conflicting source, undecodable schema
	ErrCodeInvalidOptions Code = "INVALID_OPTIONS" // 400, layout or view options out of range
	ErrCodeInvalidEvent   Code = "INVALID_EVENT"   // 400, bad viewer session event

	ErrCodeNotFound        Code = "NOT_FOUND"         // 404
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND" // 404
	ErrCodeSessionExpired  Code = "SESSION_EXPIRED"   // 410

	ErrCodeUnauthorized Code = "UNAUTHORIZED"  // 401
	ErrCodeRateLimited  Code = "RATE_LIMITED"  // 429
	ErrCodeNetwork      Code = "NETWORK_ERROR" // 502
	ErrCodeTimeout      Code = "TIMEOUT"       // 504

	ErrCodeInternal Code = "INTERNAL_ERROR" // 500
)

var statuses = map[Code]int{
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidFormat:   http.StatusBadRequest,
	ErrCodeInvalidSource:   http.StatusBadRequest,
	ErrCodeInvalidOptions:  http.StatusBadRequest,
	ErrCodeInvalidEvent:    http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeSessionNotFound: http.StatusNotFound,
	ErrCodeSessionExpired:  http.StatusGone,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeNetwork:         http.StatusBadGateway,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// RateLimitedError reports a 429 from the console. It carries its own code,
// so [GetCode] and [HTTPStatus] treat it like an [Error] with
// [ErrCodeRateLimited].
type RateLimitedError struct {
	RetryAfter int // seconds from the Retry-After header, 0 if absent
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }

// GetCode returns the code of the outermost coded error in err's chain, or
// "" when there is none.
func GetCode(err error) Code {
	var coded interface{ code() Code }
	if errors.As(err, &coded) {
		return coded.code()
	}
	return ""
}

func (e *Error) code() Code            { return e.Code }
func (e *RateLimitedError) code() Code { return ErrCodeRateLimited }

// Is reports whether GetCode(err) is code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage is the message without the code prefix or cause, for *Error;
// otherwise err.Error().
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err's code to a response status; uncoded errors are 500.
func HTTPStatus(err error) int {
	if status, ok := statuses[GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

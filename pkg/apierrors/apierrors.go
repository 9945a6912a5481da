// Package apierrors defines the error codes the HTTP layer speaks and their
// JSON envelope: {"error": code, "error_description": text}. Internal errors
// omit the description so server details never leak to clients.
package apierrors

import "net/http"

type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"
)

// Error carries a wire code plus a human-readable message.
type Error struct {
	Code    Code
	Message string
}

func New(code Code, message string) Error {
	return Error{Code: code, Message: message}
}

func (e Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// ToHTTPStatus maps a code to its HTTP status; unknown codes are a 500.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

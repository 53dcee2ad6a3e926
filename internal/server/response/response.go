// Package response writes the JSON envelope every sedmap API answer uses:
// {"data": ..., "error": null} on success and {"data": null, "error": {...}}
// on failure.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/agentstation/sedmap/pkg/errors"
)

// Response is the envelope.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error is the failure half of the envelope. Code is derived from the
// HTTP status.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

var codes = map[int]string{
	http.StatusBadRequest:          "BAD_REQUEST",
	http.StatusNotFound:            "NOT_FOUND",
	http.StatusInternalServerError: "INTERNAL_ERROR",
	http.StatusServiceUnavailable:  "SERVICE_UNAVAILABLE",
}

// Code returns the envelope code for an HTTP status.
func Code(status int) string {
	if c, ok := codes[status]; ok {
		return c
	}
	return "ERROR"
}

// Success wraps data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail builds a failure envelope.
func Fail(code, message, details string) Response {
	return Response{Error: &Error{Code: code, Message: message, Details: details}}
}

// JSON writes resp with status.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing useful to do with an encode error.
	_ = json.NewEncoder(w).Encode(resp)
}

// OK writes data with 200.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// Problem writes a failure envelope with status.
func Problem(w http.ResponseWriter, status int, message, details string) {
	JSON(w, status, Fail(Code(status), message, details))
}

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, message, details string) {
	Problem(w, http.StatusBadRequest, message, details)
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, message, details string) {
	Problem(w, http.StatusNotFound, message, details)
}

// ServiceUnavailable writes a 503.
func ServiceUnavailable(w http.ResponseWriter, details string) {
	Problem(w, http.StatusServiceUnavailable, "Service unavailable", details)
}

// InternalError writes a 500 without exposing err, which may carry DSNs
// or file paths.
func InternalError(w http.ResponseWriter, _ error) {
	Problem(w, http.StatusInternalServerError, "Internal server error", "An unexpected error occurred")
}

// Status classifies err: missing objects, tables and payloads are 404,
// bad input and unsupported formats 400, an unusable configuration 503,
// and anything else 500. Wrapped errors are classified by their cause.
func Status(err error) int {
	var cfgErr *errors.ConfigError
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsValidationError(err), errors.IsUnsupported(err):
		return http.StatusBadRequest
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrorFromType writes the failure envelope Status picks for err.
func ErrorFromType(w http.ResponseWriter, err error) {
	switch status := Status(err); status {
	case http.StatusInternalServerError:
		InternalError(w, err)
	case http.StatusServiceUnavailable:
		ServiceUnavailable(w, err.Error())
	default:
		Problem(w, status, err.Error(), "")
	}
}

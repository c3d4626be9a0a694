// Package errors defines the JSON error envelope returned by every
// non-success HTTP response.
package errors

import (
	"encoding/json"
	"net/http"
)

// Stable error codes used across the API surface.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeRunInFlight        = "RUN_IN_FLIGHT"
	CodeNoActiveRun        = "NO_ACTIVE_RUN"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// HTTPErrorDetail is the inner error object.
type HTTPErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// HTTPErrorResponse is the envelope every error response encodes to.
type HTTPErrorResponse struct {
	Error HTTPErrorDetail `json:"error"`
}

// WriteHTTPError encodes the envelope with the given status code.
func WriteHTTPError(w http.ResponseWriter, status int, code, message string) {
	WriteHTTPErrorDetail(w, status, HTTPErrorDetail{Code: code, Message: message})
}

// WriteHTTPErrorDetail encodes a fully populated detail object.
func WriteHTTPErrorDetail(w http.ResponseWriter, status int, detail HTTPErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(HTTPErrorResponse{Error: detail})
}

package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON error body written by portal handlers.
type ErrorResponse struct {
	// Error is a short machine-readable code (e.g. "invalid_request")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse with the given status code.
func WriteError(w http.ResponseWriter, code int, errCode, description string) {
	WriteJSON(w, code, ErrorResponse{
		Error:            errCode,
		ErrorDescription: description,
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Every login step response carries flow state and must not be cached.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

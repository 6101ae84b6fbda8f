package esapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/memberauth/pkg/httpx"
)

// ============================================================================
// ES Error Codes
// ============================================================================

const (
	CodeInvalidRequest      = "UI-400"
	CodeInvalidCredentials  = "UI-401"
	CodeAccountInactive     = "UI-403"
	CodeAccountNotFound     = "UI-404"
	CodeTooManyAttempts     = "UI-405"
	CodeAccountLocked       = "UI-406"
	CodeInteractionExpired  = "UI-409"
	CodeInvalidOTP          = "UI-410"
	CodeOTPExpired          = "UI-411"
	CodeOTPLimitReached     = "UI-412"
	CodeDeviceUnavailable   = "UI-413"
	CodeEmailInUse          = "UI-420"
	CodeInvalidEmail        = "UI-421"
	CodePasswordPolicy      = "UI-430"
	CodePasswordReused      = "UI-431"
	CodeIdentityMismatch    = "UI-440"
	CodeHighRisk            = "UI-451"
	CodeIndeterminateRisk   = "UI-452"
	CodeServerError         = "UI-500"
	CodeServiceUnavailable  = "UI-503"
	codeUnparseableResponse = "UI-000"
)

// ============================================================================
// APIError - structured ES rejection
// ============================================================================

// APIError represents a structured rejection from the ES API.
// It is used both by the client (to represent failures) and by servers
// speaking the ES wire format (to write them).
type APIError struct {
	// StatusCode is the HTTP status code of the rejection
	StatusCode int `json:"-"`

	// Code is the short ES error code (e.g. "UI-401")
	Code string `json:"errorCode"`

	// Description is the backend's own description, not meant for members
	Description string `json:"message,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("es api error %s (HTTP %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("es api error %s (HTTP %d): %s", e.Code, e.StatusCode, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	status := e.StatusCode
	if status == 0 {
		status = http.StatusBadRequest
	}
	httpx.WriteJSON(w, status, e)
}

// NewAPIError creates a new APIError.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-success response into an *APIError.
// Bodies without an error code still produce an *APIError so callers can
// inspect the status; its code is not part of any known table.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        codeUnparseableResponse,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/AuthGuard/AuthGuard-sub001/pkg/httpx"
)

// APIError is a failed request. The server writes it with WriteError and the
// client decodes it from non-2xx responses.
type APIError struct {
	StatusCode int
	ErrorResponse
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Code, e.Message, e.StatusCode)
}

// WriteError writes e as an ErrorResponse.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e.ErrorResponse)
}

// NewAPIError builds an APIError without entity details.
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{
		StatusCode:    status,
		ErrorResponse: ErrorResponse{Code: code, Message: message},
	}
}

var (
	ErrInvalidRequest   = NewAPIError(http.StatusBadRequest, "invalid_request", "the request is malformed or missing required parameters")
	ErrInvalidBody      = NewAPIError(http.StatusBadRequest, "invalid_request", "invalid JSON body")
	ErrServerError      = NewAPIError(http.StatusInternalServerError, "server_error", "internal server error")
)

// parseErrorResponse converts a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Code != "" {
		return &APIError{StatusCode: resp.StatusCode, ErrorResponse: errResp}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		ErrorResponse: ErrorResponse{
			Code:    "server_error",
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		},
	}
}

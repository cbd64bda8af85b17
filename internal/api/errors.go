package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an error response from the storefront API
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (%d)", e.StatusCode)
}

// NewAPIError creates a new API error
func NewAPIError(statusCode int, message, code string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// NetworkError wraps a transport-level failure (DNS, refused connection,
// timeout). It is retryable and must never be treated as a logout signal.
type NetworkError struct {
	Err error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying transport error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a server-confirmed 401. Only this
// error class may invalidate a cached identity.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsNetwork reports whether err is a transport-level failure
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsServerValidation reports whether err carries a server-side validation
// message (duplicate email, reactivation not applicable, and similar). The
// message is safe to surface verbatim.
func IsServerValidation(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusBadRequest ||
			apiErr.StatusCode == http.StatusConflict ||
			apiErr.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// UserMessage converts any request error into a message suitable for
// display next to the control that triggered it.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if IsNetwork(err) {
		return "connection problem, please try again"
	}
	if err != nil {
		return err.Error()
	}
	return "something went wrong, please try again"
}

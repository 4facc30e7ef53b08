package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a response the server rejected with a non-2xx status.  The
// backend puts a human readable reason in "message" (sometimes "error").
type APIError struct {
	StatusCode int
	Message    string
}

func (err *APIError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("backend: HTTP %d", err.StatusCode)
	}
	return fmt.Sprintf("backend: HTTP %d: %s", err.StatusCode, err.Message)
}

// NetworkError is a call that never produced a response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (err *NetworkError) Error() string {
	return fmt.Sprintf("backend: %s %s: %v", err.Method, err.Path, err.Err)
}

func (err *NetworkError) Unwrap() error { return err.Err }

// ValidationError is a call the client declined to make.
type ValidationError struct {
	Message string
}

func (err *ValidationError) Error() string { return err.Message }

// Declined builds a ValidationError.
func Declined(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func parseAPIError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		apiErr.Message = text
	}
	return apiErr
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// UserMessage picks the text shown to the user for err: the reason the
// server gave, the reason the client declined, or fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) && valErr.Message != "" {
		return valErr.Message
	}
	return fallback
}

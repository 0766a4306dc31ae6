package repository

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when the backend answers 404.
var ErrNotFound = errors.New("resource not found")

// APIError is a failed backend call. Message carries the backend's own error message
// when it supplied one.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Operation, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Operation, e.StatusCode)
	}
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return e.Err
}

// BackendMessage extracts the backend-supplied message from err, if any.
func BackendMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

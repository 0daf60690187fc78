// Package services: services/errors.go
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable wraps transport failures talking to the activities API.
	ErrUnavailable = errors.New("activities API unavailable")

	// ErrMalformedResponse wraps bodies that could not be decoded or failed validation.
	ErrMalformedResponse = errors.New("malformed activities API response")
)

// APIError is a non-2xx answer from the activities API.
type APIError struct {
	StatusCode int
	Detail     string
	URL        string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("activities API returned %d for %s: %s", e.StatusCode, e.URL, e.Detail)
	}
	return fmt.Sprintf("activities API returned %d for %s", e.StatusCode, e.URL)
}

// NewAPIError creates an APIError.
func NewAPIError(statusCode int, url, detail string) *APIError {
	return &APIError{StatusCode: statusCode, URL: url, Detail: detail}
}

// DetailOf returns the server-provided detail text of err, if it carries one.
func DetailOf(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail, true
	}
	return "", false
}

package classifier

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEndpoint is returned when the endpoint is not an absolute http(s) URL.
	ErrInvalidEndpoint = errors.New("classifier: endpoint must be an absolute http or https URL")

	// ErrUnexpectedStatus is wrapped by StatusError.
	ErrUnexpectedStatus = errors.New("classifier: unexpected HTTP status")

	// ErrResponseTooLarge is returned when the response exceeds the body limit.
	ErrResponseTooLarge = errors.New("classifier: response body too large")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	// Endpoint is the URL that was called.
	Endpoint string

	// StatusCode is the HTTP status code received.
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP status %d", e.Endpoint, e.StatusCode)
}

// Unwrap lets errors.Is match ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

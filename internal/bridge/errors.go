package bridge

import "errors"

var (
	// ErrUnknownEndpoint is returned when sending to an endpoint that was never created.
	ErrUnknownEndpoint = errors.New("bridge: unknown endpoint")

	// ErrEndpointClosed is returned when the receiving endpoint stopped running.
	ErrEndpointClosed = errors.New("bridge: endpoint closed")
)

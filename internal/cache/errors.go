package cache

import "errors"

var (
	// ErrEmptyURL is returned when a result is recorded without a URL.
	ErrEmptyURL = errors.New("cache: url must not be empty")
)

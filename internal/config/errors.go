package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no page URL or file was given.
	ErrNoTarget = errors.New("no target specified: provide one or more page URLs or files")

	// ErrInvalidEndpoint is returned when the classifier endpoint is not an http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid classifier endpoint: must be an http or https URL")

	// ErrInvalidTimeout is returned when a request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidTrigger is returned for an unknown trigger mode.
	ErrInvalidTrigger = errors.New("invalid trigger: must be auto, click or manual")

	// ErrInvalidCacheTTL is returned when the cache lifetime is not positive.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl: must be positive")

	// ErrInvalidHistoryLimit is returned when the history limit is not positive.
	ErrInvalidHistoryLimit = errors.New("invalid history limit: must be positive")

	// ErrInvalidGateTimeout is returned when the click gate timeout is not positive.
	ErrInvalidGateTimeout = errors.New("invalid gate timeout: must be positive")

	// ErrInvalidPollInterval is returned when the panel poll interval is not
	// positive or exceeds the poll timeout.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive and not exceed the poll timeout")
)

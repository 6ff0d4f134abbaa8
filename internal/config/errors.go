package config

import "errors"

// Configuration validation errors returned by Config.Validate().
// Package-level sentinel errors let callers use errors.Is() while still
// providing readable messages.
var (
	// ErrInvalidTimeout is returned when the HTTP timeout is not positive.
	// A zero timeout would make every probe fail immediately.
	ErrInvalidTimeout = errors.New("invalid http timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the response body cap is not
	// positive. An uncapped body would let one assessment stream
	// unbounded data.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidCacheTTL is returned when the cache TTL is negative.
	// Use 0 to treat every cached entry as stale.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl: must be non-negative")

	// ErrInvalidSearchResults is returned when the per-query result count
	// is not positive.
	ErrInvalidSearchResults = errors.New("invalid search results: must be positive")

	// ErrInvalidBatchSize is returned when the batch concurrency is not
	// positive. Zero concurrency would mean no assessments run.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)

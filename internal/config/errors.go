package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so that callers can use
// errors.Is() for programmatic error handling.
var (
	// ErrNoTarget is returned when no domain to audit is specified.
	ErrNoTarget = errors.New("no target specified: provide one or more domains")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is outside the allowed range.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be between 1 and 200")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when more than one of
	// --json, --markdown and --table is specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: use only one of --json, --markdown and --table")

	// ErrInvalidSlowThreshold is returned when the slow page threshold is not positive.
	ErrInvalidSlowThreshold = errors.New("invalid slow threshold: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidScheme is returned when the scheme is neither http nor https.
	ErrInvalidScheme = errors.New("invalid scheme: must be http or https")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	ErrInvalidDepth = errors.New("invalid depth: must be non-negative")
)

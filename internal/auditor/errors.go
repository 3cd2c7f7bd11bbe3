package auditor

import "errors"

// Sentinel errors for audit failures.
var (
	// ErrSeedUnreachable is returned when the seed URL cannot be fetched or
	// answers with status >= 400. The underlying *model.FetchError is wrapped.
	ErrSeedUnreachable = errors.New("seed URL unreachable")

	// ErrInvalidDomain is returned when the domain is not a bare hostname.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrInvalidMaxPages is returned when max pages is outside 1..MaxPagesLimit.
	ErrInvalidMaxPages = errors.New("invalid max pages")
)

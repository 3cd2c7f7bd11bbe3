// Package fetcher performs the HTTP requests of an audit.
//
// A Fetcher issues exactly one GET per URL, bounded by a fixed timeout,
// and never retries. Failures are classified into model.FetchError kinds
// (timeout, connection, http_error, malformed_url) so that the auditor can
// turn them into broken_links issues.
//
// RobotsChecker answers whether a URL may be crawled according to the
// host's robots.txt. It is optional and disabled unless the audit is
// configured to respect robots.txt.
//
// # Usage
//
//	f := fetcher.New(fetcher.WithTimeout(10 * time.Second))
//	resp, err := f.Fetch(ctx, "https://example.com/")
package fetcher

// Package log provides secure logging built on top of the standard slog package.
//
// SecureHandler wraps any slog.Handler and masks sensitive information before
// it is written:
//   - attributes whose key names a credential (cookie, authorization, token, ...)
//   - values that look like credentials (bearer tokens, JWTs, long API keys)
//   - header maps, whose sensitive entries are masked one by one
//   - URLs carrying user info or credential query parameters, such as the
//     page URLs logged while crawling a site with a site-specific cookie or
//     signed links
//
// Even in verbose mode, sensitive values stay masked so that logs can be
// shared when reporting a crawl problem.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("fetching page",
//	    "url", "https://user:pw@example.com/?token=abc", // https://***REDACTED***@example.com/?token=***REDACTED***
//	    "cookie", "session=abc123",                      // ***REDACTED***
//	)
//	slog.SetDefault(logger)
package log

package auditor

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

// hostnamePattern matches DNS hostnames, including single-label names such as localhost.
var hostnamePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*\.?$`)

// NormalizeDomain validates a user-supplied domain and returns it as a bare
// host, optionally with a port.
//
// An http:// or https:// prefix and a single trailing slash are accepted
// and stripped. Paths, queries, credentials, whitespace and other schemes
// are rejected with ErrInvalidDomain.
func NormalizeDomain(domain string) (string, error) {
	d := strings.TrimSpace(domain)
	if d == "" {
		return "", fmt.Errorf("%w: empty domain", ErrInvalidDomain)
	}

	lower := strings.ToLower(d)
	switch {
	case strings.HasPrefix(lower, "https://"):
		d = d[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		d = d[len("http://"):]
	case strings.Contains(d, "://"):
		return "", fmt.Errorf("%w: unsupported scheme in %q", ErrInvalidDomain, domain)
	}
	d = strings.TrimSuffix(d, "/")

	if d == "" || strings.ContainsAny(d, " \t\r\n/?#@\\") {
		return "", fmt.Errorf("%w: %q is not a bare hostname", ErrInvalidDomain, domain)
	}

	u, err := url.Parse("//" + d)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDomain, err)
	}

	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidDomain, domain)
	}
	if net.ParseIP(host) == nil && !hostnamePattern.MatchString(host) {
		return "", fmt.Errorf("%w: %q is not a valid hostname", ErrInvalidDomain, domain)
	}

	return strings.ToLower(u.Host), nil
}

// ValidateMaxPages checks that maxPages is within 1..MaxPagesLimit.
func ValidateMaxPages(maxPages int) error {
	if maxPages < 1 || maxPages > MaxPagesLimit {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidMaxPages, maxPages, MaxPagesLimit)
	}
	return nil
}

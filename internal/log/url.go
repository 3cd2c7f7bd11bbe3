package log

import (
	"net/url"
	"strings"
)

// RedactURL masks the user info and credential query parameters of an
// absolute http(s) URL. It reports false when s is not such a URL or
// contains nothing to mask.
func RedactURL(s string) (string, bool) {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return s, false
	}
	u, err := url.Parse(s)
	if err != nil {
		return s, false
	}

	changed := false
	if u.User != nil {
		u.User = url.User(MaskValue)
		changed = true
	}

	if u.RawQuery != "" {
		query := u.Query()
		for key := range query {
			if isSensitiveKey(key) || isSignatureParam(key) {
				query.Set(key, MaskValue)
				changed = true
			}
		}
		if changed {
			u.RawQuery = query.Encode()
		}
	}

	if !changed {
		return s, false
	}
	// Keep the mask readable instead of percent-encoded.
	return strings.ReplaceAll(u.String(), url.QueryEscape(MaskValue), MaskValue), true
}

// isSignatureParam reports whether a query parameter signs or grants access.
func isSignatureParam(key string) bool {
	switch strings.ToLower(key) {
	case "sig", "signature", "x-amz-signature", "x-goog-signature", "key", "code":
		return true
	}
	return false
}

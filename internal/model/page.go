package model

import (
	"errors"
	"fmt"
	"time"
)

// CrawlTarget is a URL waiting in the crawl frontier.
// It is created when a link is discovered and consumed once when dequeued.
type CrawlTarget struct {
	// URL is the normalized absolute URL to fetch.
	URL string `json:"url"`

	// Depth is the number of link hops from the seed URL.
	// The seed itself has depth 0.
	Depth int `json:"depth"`
}

// Heading is a single h1-h6 element in document order.
type Heading struct {
	// Level is the heading level, 1 for h1 through 6 for h6.
	Level int `json:"level"`

	// Text is the trimmed text content of the heading.
	Text string `json:"text"`
}

// Image is a single <img> element.
type Image struct {
	// Src is the image source resolved to an absolute URL when possible.
	Src string `json:"src"`

	// Alt is the alt attribute. Nil means the attribute is missing,
	// which is different from a present but empty alt="".
	Alt *string `json:"alt,omitempty"`
}

// HasAlt reports whether the image carries non-blank alt text.
func (i Image) HasAlt() bool {
	return i.Alt != nil && !isBlank(*i.Alt)
}

// Redirect records a single redirect hop observed while fetching a page.
type Redirect struct {
	// From is the URL that answered with a redirect.
	From string `json:"from"`

	// To is the URL the client was redirected to.
	To string `json:"to"`

	// StatusCode is the redirect status (301, 302, 307, 308).
	StatusCode int `json:"status_code"`
}

// PageResult is a fetched and parsed page.
//
// Optional HTML fields are pointers so that absence can be told apart from
// an empty value. A PageResult is immutable once produced.
type PageResult struct {
	// URL is the URL that was requested.
	URL string `json:"url"`

	// FinalURL is the URL after following redirects.
	FinalURL string `json:"final_url,omitempty"`

	// StatusCode is the HTTP status code, 0 when no response was received.
	StatusCode int `json:"status_code"`

	// Elapsed is the wall-clock time spent fetching the page.
	Elapsed time.Duration `json:"elapsed"`

	// ContentType is the value of the Content-Type response header.
	ContentType string `json:"content_type,omitempty"`

	// ContentLength is the size of the response body in bytes.
	ContentLength int64 `json:"content_length"`

	// IsHTML reports whether the body was parsed as HTML.
	IsHTML bool `json:"is_html"`

	// Title is the text of the first <title> element.
	Title *string `json:"title,omitempty"`

	// MetaDescription is the content of <meta name="description">.
	MetaDescription *string `json:"meta_description,omitempty"`

	// Headings lists h1-h6 elements in document order.
	Headings []Heading `json:"headings,omitempty"`

	// Links contains unique absolute http(s) URLs from <a href> in discovery order.
	Links []string `json:"links,omitempty"`

	// Images lists <img> elements in document order.
	Images []Image `json:"images,omitempty"`

	// Redirects lists the redirect hops followed to reach FinalURL.
	Redirects []Redirect `json:"redirects,omitempty"`

	// FetchErr is set when the page could not be fetched successfully.
	FetchErr *FetchError `json:"fetch_error,omitempty"`
}

// Failed reports whether fetching the page failed, either because no
// response was received or because the server answered with status >= 400.
func (p *PageResult) Failed() bool {
	return p.FetchErr != nil || p.StatusCode >= 400
}

// HeadingCount returns the number of headings with the given level.
func (p *PageResult) HeadingCount(level int) int {
	n := 0
	for _, h := range p.Headings {
		if h.Level == level {
			n++
		}
	}
	return n
}

// FetchErrorKind classifies why a fetch failed.
type FetchErrorKind string

const (
	// FetchErrorTimeout means the request did not complete within the timeout.
	FetchErrorTimeout FetchErrorKind = "timeout"

	// FetchErrorConnection means the connection could not be established or broke.
	FetchErrorConnection FetchErrorKind = "connection"

	// FetchErrorHTTP means the server answered with status >= 400.
	FetchErrorHTTP FetchErrorKind = "http_error"

	// FetchErrorMalformedURL means the URL could not be turned into a request.
	FetchErrorMalformedURL FetchErrorKind = "malformed_url"
)

// FetchError describes a failed fetch.
type FetchError struct {
	// Kind classifies the failure.
	Kind FetchErrorKind `json:"kind"`

	// URL is the URL that was requested.
	URL string `json:"url"`

	// StatusCode is set for FetchErrorHTTP.
	StatusCode int `json:"status_code,omitempty"`

	// Message is the text of the underlying error, kept for serialization.
	Message string `json:"message,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// NewFetchError creates a FetchError wrapping err.
func NewFetchError(kind FetchErrorKind, url string, err error) *FetchError {
	fe := &FetchError{Kind: kind, URL: url, Err: err}
	if err != nil {
		fe.Message = err.Error()
	}
	return fe
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Kind == FetchErrorHTTP {
		return fmt.Sprintf("fetch %s: %s: status %d", e.URL, e.Kind, e.StatusCode)
	}
	if e.Message != "" {
		return fmt.Sprintf("fetch %s: %s: %s", e.URL, e.Kind, e.Message)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError extracts a *FetchError from err's chain.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

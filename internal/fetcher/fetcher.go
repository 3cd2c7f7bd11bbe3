package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
)

// Default fetch settings.
const (
	// DefaultTimeout bounds a single request including reading the body.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies the auditor in server logs.
	DefaultUserAgent = "Mozilla/5.0 (compatible; SEOAuditBot/1.0; +https://github.com/nao1215/seoaudit)"

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// maxRedirects matches the net/http default.
	maxRedirects = 10
)

// Response is the outcome of a fetch that received an HTTP response.
type Response struct {
	// URL is the URL that was requested.
	URL string

	// FinalURL is the URL after following redirects.
	FinalURL string

	// StatusCode is the HTTP status code of the final response.
	StatusCode int

	// Header holds the final response headers.
	Header http.Header

	// Body is the response body, truncated to the maximum body size.
	Body []byte

	// ContentLength is the size of the body. It is the declared length when
	// the body was truncated and the server sent Content-Length.
	ContentLength int64

	// Elapsed is the wall-clock time from sending the request to reading the body.
	Elapsed time.Duration

	// Redirects lists the redirect hops that were followed.
	Redirects []model.Redirect
}

// ContentType returns the Content-Type header of the response.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// IsHTML reports whether the response declares an HTML body.
// A missing Content-Type is treated as HTML.
func (r *Response) IsHTML() bool {
	ct := strings.ToLower(r.ContentType())
	return ct == "" || strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

// Fetcher performs single-attempt HTTP GET requests.
type Fetcher struct {
	// client is the underlying HTTP client.
	client *http.Client

	// timeout bounds each request.
	timeout time.Duration

	// userAgent is sent with every request.
	userAgent string

	// headers are extra request headers.
	headers map[string]string

	// cookie is sent as the Cookie header when non-empty.
	cookie string

	// maxBodySize limits the bytes read from a response body.
	maxBodySize int64

	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client. The client's Timeout and
// CheckRedirect are overridden per request.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders sets extra request headers.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithCookie sets the Cookie header.
// Format: "name=value" or "name1=value1; name2=value2".
func WithCookie(cookie string) Option {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithMaxBodySize sets the maximum number of body bytes to read.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Fetcher with default settings.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{},
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Timeout returns the per-request timeout.
func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

// UserAgent returns the User-Agent sent with requests.
func (f *Fetcher) UserAgent() string {
	return f.userAgent
}

// Client returns an HTTP client configured with the fetcher's timeout.
func (f *Fetcher) Client() *http.Client {
	c := *f.client
	c.Timeout = f.timeout
	return &c
}

// Fetch issues a single GET request for rawURL.
//
// On a response with status >= 400 both the Response and a *model.FetchError
// of kind http_error are returned. Every other error is a *model.FetchError
// and the Response is nil.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, model.NewFetchError(model.FetchErrorMalformedURL, rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, model.NewFetchError(model.FetchErrorMalformedURL, rawURL,
			fmt.Errorf("unsupported URL %q", rawURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, model.NewFetchError(model.FetchErrorMalformedURL, rawURL, err)
	}
	f.setHeaders(req)

	var redirects []model.Redirect
	client := f.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		status := 0
		if req.Response != nil {
			status = req.Response.StatusCode
		}
		redirects = append(redirects, model.Redirect{
			From:       via[len(via)-1].URL.String(),
			To:         req.URL.String(),
			StatusCode: status,
		})
		f.setHeaders(req)
		return nil
	}

	start := time.Now()
	resp, err := client.Do(req) //nolint:gosec // URL comes from the crawl frontier
	if err != nil {
		return nil, model.NewFetchError(classify(err), rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	elapsed := time.Since(start)
	if err != nil {
		return nil, model.NewFetchError(classify(err), rawURL, err)
	}

	contentLength := int64(len(body))
	if resp.ContentLength > contentLength {
		contentLength = resp.ContentLength
	}

	result := &Response{
		URL:           rawURL,
		FinalURL:      resp.Request.URL.String(),
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		Body:          body,
		ContentLength: contentLength,
		Elapsed:       elapsed,
		Redirects:     redirects,
	}

	f.logger.Debug("fetched page",
		"url", rawURL,
		"status", resp.StatusCode,
		"elapsed", elapsed,
		"bytes", len(body),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return result, &model.FetchError{
			Kind:       model.FetchErrorHTTP,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
		}
	}

	return result, nil
}

// setHeaders applies the configured request headers.
func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
}

// classify maps a transport error to a fetch error kind.
func classify(err error) model.FetchErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.FetchErrorTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.FetchErrorTimeout
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op == "parse" {
		return model.FetchErrorMalformedURL
	}

	return model.FetchErrorConnection
}

package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// maxRobotsBodySize limits the size of robots.txt responses.
const maxRobotsBodySize = 512 * 1024

// RobotsChecker answers whether URLs may be crawled according to robots.txt.
// Rules are fetched once per host and cached for the lifetime of the checker.
// A missing, unreachable or unparsable robots.txt allows everything.
type RobotsChecker struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a RobotsChecker that uses the fetcher's client,
// timeout and User-Agent.
func NewRobotsChecker(f *Fetcher) *RobotsChecker {
	return &RobotsChecker{
		client:    f.Client(),
		userAgent: f.UserAgent(),
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be crawled.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	data := r.rules(ctx, u)
	if data == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return data.TestAgent(path, r.userAgent)
}

// rules returns the cached robots.txt rules for the URL's host,
// fetching them on first use. Nil means allow all.
func (r *RobotsChecker) rules(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	host := strings.ToLower(u.Host)

	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.cache[host]; ok {
		return data
	}

	data := r.fetch(ctx, u.Scheme, host)
	r.cache[host] = data
	return data
}

// fetch downloads and parses robots.txt. Errors yield nil.
func (r *RobotsChecker) fetch(ctx context.Context, scheme, host string) *robotstxt.RobotsData {
	robotsURL := scheme + "://" + host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req) //nolint:gosec // URL is derived from the audited host
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodySize))
	if err != nil {
		return nil
	}

	// 4xx allows all, 5xx disallows all, 2xx parses the body.
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}
	return data
}

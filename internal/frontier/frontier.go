package frontier

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/nao1215/seoaudit/internal/model"
)

// Bloom filter sizing.
const (
	// DefaultExpectedURLs is the number of distinct URLs the filter is sized for.
	DefaultExpectedURLs = 10000

	// falsePositiveRate only costs an extra map lookup when hit.
	falsePositiveRate = 0.001
)

// DefaultSkipExtensions are path extensions that never contain HTML pages.
var DefaultSkipExtensions = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".ico",
	".css", ".js", ".zip",
}

// ErrInvalidSeed is returned when the seed URL is not an absolute http(s) URL.
var ErrInvalidSeed = errors.New("invalid seed URL")

// Reject reasons, used in debug logging.
const (
	reasonInvalid   = "invalid URL"
	reasonScheme    = "unsupported scheme"
	reasonHost      = "different host"
	reasonExtension = "static asset"
	reasonQuery     = "query string"
	reasonPattern   = "excluded by pattern"
	reasonDepth     = "too deep"
	reasonVisited   = "already visited"
	reasonPending   = "already pending"
	reasonCapacity  = "capacity reached"
	reasonFilter    = "rejected by filter"
)

// Frontier is the FIFO queue of URLs to crawl plus the visited set.
type Frontier struct {
	// seedHost is the lowercased host (with port) of the seed URL.
	seedHost string

	// queue holds pending targets in discovery order.
	queue []model.CrawlTarget

	// pending and visited are disjoint sets of normalized URLs.
	pending map[string]struct{}
	visited map[string]struct{}

	// visitedOrder keeps visited URLs in the order they were visited.
	visitedOrder []string

	// dequeued counts URLs handed out by Dequeue.
	dequeued int

	// seen contains every URL ever admitted (pending or visited).
	seen *bloom.BloomFilter

	// capacity bounds len(pending)+dequeued. Zero means unbounded.
	capacity int

	// maxDepth rejects targets deeper than this. Zero means unlimited.
	maxDepth int

	// skipQuery rejects URLs with a query string.
	skipQuery bool

	// skipExtensions are lowercase path extensions to reject.
	skipExtensions []string

	// ignorePatterns and followPatterns are glob patterns on the URL path.
	ignorePatterns []string
	followPatterns []string

	// filter is an extra admission check, e.g. robots.txt.
	filter func(string) bool

	expectedURLs uint
	logger       *slog.Logger
}

// Option configures a Frontier.
type Option func(*Frontier)

// WithCapacity bounds the number of URLs the frontier hands out, counting
// pending and dequeued URLs. Since URLs are dequeued in discovery order,
// a crawl capped at N pages never needs more than N. URLs recorded with
// MarkVisited do not count.
func WithCapacity(n int) Option {
	return func(f *Frontier) {
		if n > 0 {
			f.capacity = n
		}
	}
}

// WithMaxDepth rejects URLs more than depth link hops away from the seed.
// Zero means unlimited.
func WithMaxDepth(depth int) Option {
	return func(f *Frontier) {
		if depth >= 0 {
			f.maxDepth = depth
		}
	}
}

// WithSkipQuery rejects URLs that carry a query string.
func WithSkipQuery(skip bool) Option {
	return func(f *Frontier) {
		f.skipQuery = skip
	}
}

// WithSkipExtensions replaces the list of rejected path extensions.
func WithSkipExtensions(exts []string) Option {
	return func(f *Frontier) {
		f.skipExtensions = make([]string, 0, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			f.skipExtensions = append(f.skipExtensions, ext)
		}
	}
}

// WithIgnorePatterns sets URL path patterns to skip.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
func WithIgnorePatterns(patterns []string) Option {
	return func(f *Frontier) {
		f.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow.
// If set, only URLs matching at least one pattern are admitted.
func WithFollowPatterns(patterns []string) Option {
	return func(f *Frontier) {
		f.followPatterns = patterns
	}
}

// WithFilter adds an admission check run after all other filters.
func WithFilter(filter func(rawURL string) bool) Option {
	return func(f *Frontier) {
		f.filter = filter
	}
}

// WithExpectedURLs sizes the Bloom filter.
func WithExpectedURLs(n uint) Option {
	return func(f *Frontier) {
		if n > 0 {
			f.expectedURLs = n
		}
	}
}

// WithLogger sets the logger used for debug output of rejected URLs.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Frontier) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Frontier restricted to the host of seedURL and enqueues
// the seed at depth 0. The seed bypasses the path filters.
func New(seedURL string, opts ...Option) (*Frontier, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if (seed.Scheme != "http" && seed.Scheme != "https") || seed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, seedURL)
	}

	f := &Frontier{
		seedHost:       strings.ToLower(seed.Host),
		pending:        make(map[string]struct{}),
		visited:        make(map[string]struct{}),
		skipExtensions: DefaultSkipExtensions,
		expectedURLs:   DefaultExpectedURLs,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	f.seen = bloom.NewWithEstimates(f.expectedURLs, falsePositiveRate)
	f.push(Normalize(seed), 0)

	return f, nil
}

// Enqueue adds rawURL at the given depth if it passes every admission rule.
// It reports whether the URL was added.
func (f *Frontier) Enqueue(rawURL string, depth int) bool {
	normalized, reason := f.admit(rawURL, depth)
	if reason != "" {
		f.logger.Debug("frontier rejected URL", "url", rawURL, "reason", reason)
		return false
	}

	f.push(normalized, depth)
	return true
}

// Dequeue removes the oldest pending target and marks it visited.
// The second return value is false when the frontier is empty.
func (f *Frontier) Dequeue() (model.CrawlTarget, bool) {
	if len(f.queue) == 0 {
		return model.CrawlTarget{}, false
	}

	target := f.queue[0]
	f.queue[0] = model.CrawlTarget{}
	f.queue = f.queue[1:]

	delete(f.pending, target.URL)
	f.visited[target.URL] = struct{}{}
	f.visitedOrder = append(f.visitedOrder, target.URL)
	f.dequeued++

	return target, true
}

// MarkVisited records rawURL as visited without dequeuing it, e.g. the
// final URL of a redirect. A pending entry for the URL is removed from the
// queue. URLs of other hosts are ignored.
func (f *Frontier) MarkVisited(rawURL string) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !strings.EqualFold(u.Host, f.seedHost) {
		return
	}
	f.markVisited(Normalize(u))
}

// MarkSeedVisited records the URL the crawl was started from as visited.
// Unlike MarkVisited it accepts any host, since the seed may redirect to
// the host the frontier is scoped to.
func (f *Frontier) MarkSeedVisited(rawURL string) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return
	}
	f.markVisited(Normalize(u))
}

// markVisited moves a normalized URL into the visited set.
func (f *Frontier) markVisited(normalized string) {
	if _, ok := f.visited[normalized]; ok {
		return
	}

	if _, ok := f.pending[normalized]; ok {
		delete(f.pending, normalized)
		for i, t := range f.queue {
			if t.URL == normalized {
				f.queue = append(f.queue[:i], f.queue[i+1:]...)
				break
			}
		}
	}

	f.visited[normalized] = struct{}{}
	f.visitedOrder = append(f.visitedOrder, normalized)
	f.seen.AddString(normalized)
}

// Len returns the number of pending URLs.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// VisitedCount returns the number of visited URLs, including those
// recorded with MarkVisited.
func (f *Frontier) VisitedCount() int {
	return len(f.visitedOrder)
}

// Dequeued returns the number of URLs handed out by Dequeue.
func (f *Frontier) Dequeued() int {
	return f.dequeued
}

// IsVisited reports whether rawURL has been dequeued.
func (f *Frontier) IsVisited(rawURL string) bool {
	_, ok := f.visited[NormalizeString(rawURL)]
	return ok
}

// IsPending reports whether rawURL is waiting in the queue.
func (f *Frontier) IsPending(rawURL string) bool {
	_, ok := f.pending[NormalizeString(rawURL)]
	return ok
}

// Visited returns the visited URLs in dequeue order.
func (f *Frontier) Visited() []string {
	out := make([]string, len(f.visitedOrder))
	copy(out, f.visitedOrder)
	return out
}

// Pending returns the pending URLs in queue order.
func (f *Frontier) Pending() []string {
	out := make([]string, len(f.queue))
	for i, t := range f.queue {
		out[i] = t.URL
	}
	return out
}

// SameHost reports whether rawURL belongs to the crawled host.
func (f *Frontier) SameHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, f.seedHost)
}

// push appends an already admitted URL.
func (f *Frontier) push(normalized string, depth int) {
	f.queue = append(f.queue, model.CrawlTarget{URL: normalized, Depth: depth})
	f.pending[normalized] = struct{}{}
	f.seen.AddString(normalized)
}

// admit normalizes rawURL and checks it against every rule.
// It returns the normalized URL, or a non-empty reject reason.
func (f *Frontier) admit(rawURL string, depth int) (string, string) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", reasonInvalid
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", reasonScheme
	}
	if !strings.EqualFold(u.Host, f.seedHost) {
		return "", reasonHost
	}
	if f.maxDepth > 0 && depth > f.maxDepth {
		return "", reasonDepth
	}
	if f.skipQuery && u.RawQuery != "" {
		return "", reasonQuery
	}
	if f.hasSkippedExtension(u.Path) {
		return "", reasonExtension
	}
	if !f.matchesPatterns(u.Path) {
		return "", reasonPattern
	}

	normalized := Normalize(u)

	// A negative Bloom answer is definitive.
	if f.seen.TestString(normalized) {
		if _, ok := f.visited[normalized]; ok {
			return "", reasonVisited
		}
		if _, ok := f.pending[normalized]; ok {
			return "", reasonPending
		}
	}

	if f.capacity > 0 && len(f.pending)+f.dequeued >= f.capacity {
		return "", reasonCapacity
	}
	if f.filter != nil && !f.filter(normalized) {
		return "", reasonFilter
	}

	return normalized, ""
}

// hasSkippedExtension reports whether the path ends in a skipped extension.
func (f *Frontier) hasSkippedExtension(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	for _, skip := range f.skipExtensions {
		if ext == skip {
			return true
		}
	}
	return false
}

// matchesPatterns applies ignore and follow patterns to a URL path.
//
// Logic:
//  1. If the path matches any ignore pattern, reject it
//  2. If follow patterns are set and the path matches none, reject it
//  3. Otherwise, accept it
func (f *Frontier) matchesPatterns(p string) bool {
	if p == "" {
		p = "/"
	}

	for _, pattern := range f.ignorePatterns {
		if MatchPattern(pattern, p) {
			return false
		}
	}

	if len(f.followPatterns) == 0 {
		return true
	}
	for _, pattern := range f.followPatterns {
		if MatchPattern(pattern, p) {
			return true
		}
	}
	return false
}

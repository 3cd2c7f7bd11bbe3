package auditor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/seoaudit/internal/detector"
	"github.com/nao1215/seoaudit/internal/fetcher"
	"github.com/nao1215/seoaudit/internal/frontier"
	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/parser"
	"github.com/nao1215/seoaudit/internal/report"
)

// Page limits.
const (
	// DefaultMaxPages is used when the caller does not choose a limit.
	DefaultMaxPages = 50

	// MaxPagesLimit is the largest accepted max pages value.
	MaxPagesLimit = 200
)

// Auditor runs site audits. It holds configuration only; every run
// creates its own CrawlSession.
type Auditor struct {
	fetcher  *fetcher.Fetcher
	detector *detector.Detector

	// robots is nil unless respectRobots is set.
	respectRobots bool
	robots        *fetcher.RobotsChecker

	// scheme is prepended to domains by AuditSite.
	scheme string

	maxDepth       int
	skipQuery      bool
	ignorePatterns []string
	followPatterns []string

	observers observers
	logger    *slog.Logger

	// now and newID are replaceable in tests.
	now   func() time.Time
	newID func() string

	// afterVisit, when set, is called once a page and its links are recorded.
	afterVisit func(*CrawlSession)
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithFetcher sets the fetcher used for pages.
func WithFetcher(f *fetcher.Fetcher) Option {
	return func(a *Auditor) {
		if f != nil {
			a.fetcher = f
		}
	}
}

// WithDetector sets the rule set applied to pages.
func WithDetector(d *detector.Detector) Option {
	return func(a *Auditor) {
		if d != nil {
			a.detector = d
		}
	}
}

// WithMaxDepth limits how many link hops from the seed are crawled.
// Zero means unlimited.
func WithMaxDepth(depth int) Option {
	return func(a *Auditor) {
		if depth >= 0 {
			a.maxDepth = depth
		}
	}
}

// WithSkipQueryURLs skips URLs that carry a query string.
func WithSkipQueryURLs(skip bool) Option {
	return func(a *Auditor) {
		a.skipQuery = skip
	}
}

// WithIgnorePatterns sets glob patterns of URL paths that are not crawled.
func WithIgnorePatterns(patterns []string) Option {
	return func(a *Auditor) {
		a.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets glob patterns of URL paths to crawl exclusively.
func WithFollowPatterns(patterns []string) Option {
	return func(a *Auditor) {
		a.followPatterns = patterns
	}
}

// WithRespectRobots enables robots.txt filtering of discovered URLs.
// The seed URL is always fetched.
func WithRespectRobots(respect bool) Option {
	return func(a *Auditor) {
		a.respectRobots = respect
	}
}

// WithScheme sets the scheme AuditSite prepends to domains. Default "https".
func WithScheme(scheme string) Option {
	return func(a *Auditor) {
		if scheme == "http" || scheme == "https" {
			a.scheme = scheme
		}
	}
}

// WithObserver registers an observer for progress notifications.
func WithObserver(o Observer) Option {
	return func(a *Auditor) {
		if o != nil {
			a.observers = append(a.observers, o)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Auditor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Auditor. Without options it uses a default fetcher and
// detector, https, unlimited depth and no robots.txt filtering.
func New(opts ...Option) *Auditor {
	a := &Auditor{
		scheme: "https",
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.fetcher == nil {
		a.fetcher = fetcher.New(fetcher.WithLogger(a.logger))
	}
	if a.detector == nil {
		a.detector = detector.New()
	}
	if a.respectRobots {
		a.robots = fetcher.NewRobotsChecker(a.fetcher)
	}

	return a
}

// AuditSite validates domain and maxPages, then audits the site at
// scheme://domain/. No network activity happens when validation fails.
func (a *Auditor) AuditSite(ctx context.Context, domain string, maxPages int) (*model.AuditResult, error) {
	host, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	if err := ValidateMaxPages(maxPages); err != nil {
		return nil, err
	}

	return a.Run(ctx, a.scheme+"://"+host+"/", maxPages)
}

// Run crawls the site of seedURL, fetching at most maxPages URLs, and
// returns the aggregated result. seedURL is normalized like every other
// crawled URL, so a bare "http://host" is reported as "http://host/".
//
// A seed that cannot be fetched or answers with status >= 400 fails the
// audit with ErrSeedUnreachable. Failures of other pages are reported as
// broken_links issues. Cancelling ctx stops the crawl with ctx.Err().
func (a *Auditor) Run(ctx context.Context, seedURL string, maxPages int) (*model.AuditResult, error) {
	if err := ValidateMaxPages(maxPages); err != nil {
		return nil, err
	}
	seedURL = frontier.NormalizeString(seedURL)

	a.observers.started(seedURL, maxPages)

	result, err := a.run(ctx, seedURL, maxPages)
	a.observers.finished(seedURL, result, err)

	return result, err
}

func (a *Auditor) run(ctx context.Context, seedURL string, maxPages int) (*model.AuditResult, error) {
	startedAt := a.now()
	logger := a.logger.With("seed", seedURL)
	logger.Info("starting audit", "max_pages", maxPages, "max_depth", a.maxDepth)

	// The seed is fetched before the frontier exists so that a redirect to
	// another host (e.g. example.com -> www.example.com) scopes the crawl
	// to the host that actually serves the site.
	seed := a.fetchPage(ctx, model.CrawlTarget{URL: seedURL})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("audit %s: %w", seedURL, err)
	}
	if seed.Failed() {
		err := error(seed.FetchErr)
		if err == nil {
			err = fmt.Errorf("status %d", seed.StatusCode)
		}
		logger.Warn("seed unreachable", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrSeedUnreachable, err)
	}

	scope := seedURL
	if seed.FinalURL != "" {
		scope = seed.FinalURL
	}

	f, err := frontier.New(scope, a.frontierOptions(ctx, maxPages)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDomain, err)
	}
	f.Dequeue()
	f.MarkSeedVisited(seedURL)

	session := newCrawlSession(seedURL, f, startedAt)
	a.visit(session, seed, 0)

	for session.pagesCrawled < maxPages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("audit %s: %w", seedURL, err)
		}

		target, ok := f.Dequeue()
		if !ok {
			break
		}

		page := a.fetchPage(ctx, target)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("audit %s: %w", seedURL, err)
		}
		a.visit(session, page, target.Depth)
	}

	result := a.buildResult(session)

	logger.Info("audit complete",
		"pages_crawled", result.PagesCrawled,
		"total_issues", result.TotalIssues,
		"high", result.IssuesBySeverity.High,
		"medium", result.IssuesBySeverity.Medium,
		"low", result.IssuesBySeverity.Low,
		"duration", result.Duration(),
	)

	return result, nil
}

// frontierOptions maps the auditor configuration onto the frontier.
func (a *Auditor) frontierOptions(ctx context.Context, maxPages int) []frontier.Option {
	opts := []frontier.Option{
		frontier.WithCapacity(maxPages),
		frontier.WithMaxDepth(a.maxDepth),
		frontier.WithSkipQuery(a.skipQuery),
		frontier.WithIgnorePatterns(a.ignorePatterns),
		frontier.WithFollowPatterns(a.followPatterns),
		frontier.WithLogger(a.logger),
	}
	if a.robots != nil {
		opts = append(opts, frontier.WithFilter(func(rawURL string) bool {
			return a.robots.Allowed(ctx, rawURL)
		}))
	}
	return opts
}

// visit records a fetched page: detection, merge, observers and link discovery.
func (a *Auditor) visit(session *CrawlSession, page *model.PageResult, depth int) {
	if a.afterVisit != nil {
		defer a.afterVisit(session)
	}

	issues := a.detector.Detect(page)
	session.record(page, issues)

	if page.FinalURL != "" && page.FinalURL != page.URL {
		session.Frontier.MarkVisited(page.FinalURL)
	}

	a.logger.Debug("page audited",
		"url", page.URL,
		"status", page.StatusCode,
		"elapsed", page.Elapsed,
		"issues", len(issues),
	)
	a.observers.pageAudited(page, issues)

	if page.Failed() || !page.IsHTML {
		return
	}
	for _, link := range page.Links {
		session.Frontier.Enqueue(link, depth+1)
	}
}

// fetchPage fetches and parses one target. It never fails; fetch
// problems are recorded in the returned page.
func (a *Auditor) fetchPage(ctx context.Context, target model.CrawlTarget) *model.PageResult {
	start := time.Now()
	resp, err := a.fetcher.Fetch(ctx, target.URL)

	if resp == nil {
		fe, ok := model.AsFetchError(err)
		if !ok {
			fe = model.NewFetchError(model.FetchErrorConnection, target.URL, err)
		}
		return &model.PageResult{
			URL:      target.URL,
			Elapsed:  time.Since(start),
			FetchErr: fe,
		}
	}

	var page *model.PageResult
	if resp.IsHTML() && err == nil {
		page = parser.Parse(bytes.NewReader(resp.Body), resp.FinalURL)
	} else {
		page = &model.PageResult{}
	}

	page.URL = target.URL
	page.FinalURL = resp.FinalURL
	page.StatusCode = resp.StatusCode
	page.Elapsed = resp.Elapsed
	page.ContentType = resp.ContentType()
	page.ContentLength = resp.ContentLength
	page.IsHTML = resp.IsHTML()
	page.Redirects = resp.Redirects

	var fe *model.FetchError
	if errors.As(err, &fe) {
		page.FetchErr = fe
	}

	return page
}

// buildResult assembles the AuditResult from a finished session.
func (a *Auditor) buildResult(session *CrawlSession) *model.AuditResult {
	issues := session.Issues()

	var counts model.SeverityCounts
	for _, issue := range issues {
		counts.Add(issue.Severity)
	}

	result := &model.AuditResult{
		ID:                a.newID(),
		Domain:            domainOf(session.SeedURL),
		SeedURL:           session.SeedURL,
		StartedAt:         session.StartedAt,
		DurationMS:        a.now().Sub(session.StartedAt).Milliseconds(),
		PagesCrawled:      session.PagesCrawled(),
		AverageResponseMS: session.AverageResponse().Milliseconds(),
		TotalIssues:       len(issues),
		IssuesBySeverity:  counts,
		Issues:            issues,
		Recommendations:   recommendations(issues),
		Redirects:         session.Redirects(),
	}
	result.ActionPlan = report.ActionPlan(result)

	return result
}

// recommendations derives one recommendation per merged issue.
func recommendations(issues []model.Issue) []model.Recommendation {
	recs := make([]model.Recommendation, 0, len(issues))
	for _, issue := range issues {
		info := issue.Type.Info()
		recs = append(recs, model.Recommendation{
			Priority:    issue.Severity,
			IssueType:   issue.Type,
			Title:       info.Title,
			Description: info.Recommendation,
			PageCount:   len(issue.AffectedPages),
		})
	}
	return recs
}

// domainOf returns the host of rawURL, or rawURL itself if it has none.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

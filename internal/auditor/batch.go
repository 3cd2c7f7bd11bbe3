package auditor

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of sites audited at once by a BatchAuditor.
const DefaultConcurrency = 4

// BatchResult is the outcome of auditing one domain in a batch.
type BatchResult struct {
	// Domain is the domain as given by the caller.
	Domain string

	// Result is nil when Err is set.
	Result *model.AuditResult

	// Err is the audit error, if any.
	Err error
}

// BatchAuditor audits multiple independent sites concurrently.
// Each site is crawled sequentially by its own Auditor run.
type BatchAuditor struct {
	auditor     *Auditor
	factory     SiteFactory
	concurrency int
	logger      *slog.Logger
}

// SiteFactory builds the Auditor and page limit used for one domain of a
// batch, so that each site can carry its own cookies, headers and filters.
// A non-positive limit falls back to the batch limit.
type SiteFactory func(domain string) (*Auditor, int)

// BatchOption configures a BatchAuditor.
type BatchOption func(*BatchAuditor)

// WithConcurrency sets the maximum number of concurrent audits.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchAuditor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets the logger for batch-level messages.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchAuditor) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithSiteFactory makes the batch build a dedicated Auditor per domain.
func WithSiteFactory(f SiteFactory) BatchOption {
	return func(b *BatchAuditor) {
		b.factory = f
	}
}

// NewBatchAuditor creates a BatchAuditor that runs audits with a.
func NewBatchAuditor(a *Auditor, opts ...BatchOption) *BatchAuditor {
	b := &BatchAuditor{
		auditor:     a,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.auditor == nil {
		b.auditor = New(WithLogger(b.logger))
	}
	return b
}

// auditorFor returns the Auditor and page limit for domain.
func (b *BatchAuditor) auditorFor(domain string, maxPages int) (*Auditor, int) {
	if b.factory == nil {
		return b.auditor, maxPages
	}
	a, limit := b.factory(domain)
	if a == nil {
		a = b.auditor
	}
	if limit <= 0 {
		limit = maxPages
	}
	return a, limit
}

// AuditBatch audits every domain and returns one BatchResult per domain
// in input order. Failed audits do not stop the others; their error is
// stored in the result. The returned error is only set when ctx was
// cancelled.
func (b *BatchAuditor) AuditBatch(ctx context.Context, domains []string, maxPages int) ([]BatchResult, error) {
	results := make([]BatchResult, len(domains))

	err := b.AuditBatchWithCallback(ctx, domains, maxPages, func(r BatchResult, index int) {
		// Each index is written by exactly one goroutine.
		results[index] = r
	})

	return results, err
}

// AuditBatchWithCallback audits every domain and calls callback as soon
// as each audit completes. The callback runs on the auditing goroutine
// and must be safe for concurrent use.
func (b *BatchAuditor) AuditBatchWithCallback(
	ctx context.Context,
	domains []string,
	maxPages int,
	callback func(result BatchResult, index int),
) error {
	b.logger.Info("starting batch audit",
		"total_domains", len(domains),
		"concurrency", b.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, domain := range domains {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				callback(BatchResult{Domain: domain, Err: err}, i)
				return err
			}

			a, limit := b.auditorFor(domain, maxPages)
			result, err := a.AuditSite(ctx, domain, limit)
			if err != nil {
				b.logger.Warn("audit failed", "domain", domain, "error", err)
			} else {
				b.logger.Info("audit completed",
					"domain", domain,
					"index", i+1,
					"total", len(domains),
				)
			}

			callback(BatchResult{Domain: domain, Result: result, Err: err}, i)

			// A single failed site must not cancel the rest of the batch.
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch audit complete",
		"total_domains", len(domains),
		"elapsed", time.Since(startTime),
	)

	return err
}

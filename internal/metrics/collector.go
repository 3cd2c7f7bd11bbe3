package metrics

import (
	"net/http"

	"github.com/nao1215/seoaudit/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace is the namespace of all seoaudit metrics.
	Namespace = "seoaudit"

	// Subsystem is the subsystem of the audit metrics.
	Subsystem = "audit"
)

// Label values.
const (
	statusSuccess = "success"
	statusFailed  = "failed"
	outcomeOK     = "ok"
	outcomeBroken = "broken"
)

// Collector records audit progress as Prometheus metrics.
// It is safe for concurrent use by multiple audits.
type Collector struct {
	AuditsStarted   prometheus.Counter
	AuditsFinished  *prometheus.CounterVec
	AuditsRunning   prometheus.Gauge
	AuditDuration   prometheus.Histogram
	PagesAudited    *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	IssuesDetected  *prometheus.CounterVec
	PagesPerAudit   prometheus.Histogram
	IssueTypesFound *prometheus.GaugeVec
}

// NewCollector creates the audit metrics and registers them with reg.
// A nil reg uses the default registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		AuditsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "started_total",
			Help:      "Total number of audits started",
		}),
		AuditsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "finished_total",
			Help:      "Total number of audits finished, by status",
		}, []string{"status"}),
		AuditsRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "running",
			Help:      "Number of audits currently running",
		}),
		AuditDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "duration_seconds",
			Help:      "Duration of successful audits in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4min
		}),
		PagesAudited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "pages_total",
			Help:      "Total number of pages fetched and checked, by outcome",
		}, []string{"outcome"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "page_fetch_seconds",
			Help:      "Time spent fetching a page in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		IssuesDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "issues_total",
			Help:      "Total number of per-page issues detected, by type and severity",
		}, []string{"type", "severity"}),
		PagesPerAudit: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "pages_per_audit",
			Help:      "Number of pages crawled by successful audits",
			Buckets:   prometheus.LinearBuckets(10, 20, 10),
		}),
		IssueTypesFound: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Subsystem,
			Name:      "last_issue_types",
			Help:      "Issue types found by the last finished audit of a domain, by severity",
		}, []string{"domain", "severity"}),
	}
}

// AuditStarted implements auditor.Observer.
func (c *Collector) AuditStarted(_ string, _ int) {
	c.AuditsStarted.Inc()
	c.AuditsRunning.Inc()
}

// PageAudited implements auditor.Observer.
func (c *Collector) PageAudited(page *model.PageResult, issues []model.Issue) {
	outcome := outcomeOK
	if page.Failed() {
		outcome = outcomeBroken
	}
	c.PagesAudited.WithLabelValues(outcome).Inc()
	c.FetchDuration.Observe(page.Elapsed.Seconds())

	for _, issue := range issues {
		c.IssuesDetected.WithLabelValues(issue.Type.String(), issue.Severity.String()).Inc()
	}
}

// AuditFinished implements auditor.Observer.
func (c *Collector) AuditFinished(_ string, result *model.AuditResult, err error) {
	c.AuditsRunning.Dec()

	if err != nil || result == nil {
		c.AuditsFinished.WithLabelValues(statusFailed).Inc()
		return
	}

	c.AuditsFinished.WithLabelValues(statusSuccess).Inc()
	c.AuditDuration.Observe(result.Duration().Seconds())
	c.PagesPerAudit.Observe(float64(result.PagesCrawled))
	for _, severity := range model.Severities {
		c.IssueTypesFound.WithLabelValues(result.Domain, severity.String()).
			Set(float64(result.IssuesBySeverity.Get(severity)))
	}
}

// Handler returns an HTTP handler serving the metrics of gatherer.
// A nil gatherer serves the default registry.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

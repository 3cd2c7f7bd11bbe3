package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	return NewCollector(reg), reg
}

func TestCollectorAuditLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("successful audit", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestCollector(t)

		c.AuditStarted("https://example.com/", 50)
		if got := testutil.ToFloat64(c.AuditsRunning); got != 1 {
			t.Errorf("expected 1 running audit, got %v", got)
		}

		result := &model.AuditResult{
			Domain:           "example.com",
			PagesCrawled:     12,
			DurationMS:       3000,
			IssuesBySeverity: model.SeverityCounts{High: 2, Low: 1},
		}
		c.AuditFinished("https://example.com/", result, nil)

		if got := testutil.ToFloat64(c.AuditsRunning); got != 0 {
			t.Errorf("expected no running audit, got %v", got)
		}
		if got := testutil.ToFloat64(c.AuditsStarted); got != 1 {
			t.Errorf("expected 1 started audit, got %v", got)
		}
		if got := testutil.ToFloat64(c.AuditsFinished.WithLabelValues(statusSuccess)); got != 1 {
			t.Errorf("expected 1 successful audit, got %v", got)
		}
		if got := testutil.ToFloat64(c.IssueTypesFound.WithLabelValues("example.com", "high")); got != 2 {
			t.Errorf("expected 2 high issue types, got %v", got)
		}
		if got := testutil.CollectAndCount(c.AuditDuration); got != 1 {
			t.Errorf("expected duration histogram, got %d series", got)
		}
	})

	t.Run("failed audit", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestCollector(t)
		c.AuditStarted("https://down.example/", 50)
		c.AuditFinished("https://down.example/", nil, errors.New("seed unreachable"))

		if got := testutil.ToFloat64(c.AuditsFinished.WithLabelValues(statusFailed)); got != 1 {
			t.Errorf("expected 1 failed audit, got %v", got)
		}
		if got := testutil.ToFloat64(c.AuditsFinished.WithLabelValues(statusSuccess)); got != 0 {
			t.Errorf("expected no successful audit, got %v", got)
		}
	})
}

func TestCollectorPageAudited(t *testing.T) {
	t.Parallel()

	c, _ := newTestCollector(t)

	ok := &model.PageResult{URL: "https://example.com/", StatusCode: 200, Elapsed: 100 * time.Millisecond}
	broken := &model.PageResult{URL: "https://example.com/gone", StatusCode: 404, Elapsed: 50 * time.Millisecond}

	c.PageAudited(ok, []model.Issue{
		model.NewIssue(model.IssueMissingMetaDescription, ok.URL),
		model.NewIssue(model.IssueMissingAltTags, ok.URL),
	})
	c.PageAudited(broken, []model.Issue{model.NewIssue(model.IssueBrokenLinks, broken.URL)})

	if got := testutil.ToFloat64(c.PagesAudited.WithLabelValues(outcomeOK)); got != 1 {
		t.Errorf("expected 1 ok page, got %v", got)
	}
	if got := testutil.ToFloat64(c.PagesAudited.WithLabelValues(outcomeBroken)); got != 1 {
		t.Errorf("expected 1 broken page, got %v", got)
	}
	if got := testutil.ToFloat64(c.IssuesDetected.WithLabelValues("broken_links", "high")); got != 1 {
		t.Errorf("expected 1 broken_links issue, got %v", got)
	}
	if got := testutil.CollectAndCount(c.IssuesDetected); got != 3 {
		t.Errorf("expected 3 issue series, got %d", got)
	}
}

func TestHandler(t *testing.T) {
	t.Parallel()

	c, reg := newTestCollector(t)
	c.AuditStarted("https://example.com/", 10)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	Handler(reg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "seoaudit_audit_started_total 1") {
		t.Errorf("expected started counter in output:\n%s", rec.Body.String())
	}
}

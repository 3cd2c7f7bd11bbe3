package model

import (
	"strings"
	"time"
)

// AuditResult is the output of one audit run.
//
// It is created once per audit invocation and not mutated afterwards.
// The JSON encoding is the wire format of the HTTP API and the format
// stored in the audit history database.
type AuditResult struct {
	// ID uniquely identifies the audit run.
	ID string `json:"id,omitempty"`

	// Domain is the audited hostname without scheme.
	Domain string `json:"domain"`

	// SeedURL is the first URL that was crawled.
	SeedURL string `json:"seed_url,omitempty"`

	// StartedAt is when the audit started.
	StartedAt time.Time `json:"started_at"`

	// DurationMS is how long the crawl took in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// PagesCrawled is the number of URLs dequeued and fetched.
	PagesCrawled int `json:"pages_crawled"`

	// TotalIssues is the number of merged issue entries.
	TotalIssues int `json:"total_issues"`

	// AverageResponseMS is the mean fetch time of the crawled pages in milliseconds.
	AverageResponseMS int64 `json:"average_response_ms"`

	// IssuesBySeverity counts merged issue entries per severity.
	IssuesBySeverity SeverityCounts `json:"issues_by_severity"`

	// Issues holds one entry per issue type, ordered high to low severity.
	Issues []Issue `json:"issues"`

	// ActionPlan is the markdown action plan.
	ActionPlan string `json:"action_plan"`

	// Recommendations lists suggested fixes, one per issue type.
	Recommendations []Recommendation `json:"recommendations,omitempty"`

	// Redirects lists every redirect hop seen during the crawl.
	Redirects []Redirect `json:"redirects,omitempty"`
}

// Duration returns how long the crawl took.
func (r *AuditResult) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

// AverageResponse returns the mean fetch time of the crawled pages.
func (r *AuditResult) AverageResponse() time.Duration {
	return time.Duration(r.AverageResponseMS) * time.Millisecond
}

// HasIssues returns true if the audit found at least one issue.
func (r *AuditResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// IssuesWithSeverity returns the issues with the given severity in result order.
func (r *AuditResult) IssuesWithSeverity(severity Severity) []Issue {
	var issues []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			issues = append(issues, issue)
		}
	}
	return issues
}

// Issue returns the merged issue of the given type, if present.
func (r *AuditResult) Issue(t IssueType) (Issue, bool) {
	for _, issue := range r.Issues {
		if issue.Type == t {
			return issue, true
		}
	}
	return Issue{}, false
}

// AffectedPageCount returns the number of distinct pages with at least one issue.
func (r *AuditResult) AffectedPageCount() int {
	seen := make(map[string]struct{})
	for _, issue := range r.Issues {
		for _, page := range issue.AffectedPages {
			seen[page] = struct{}{}
		}
	}
	return len(seen)
}

// isBlank reports whether s contains only whitespace.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsBlank reports whether an optional string is absent or whitespace only.
func IsBlank(s *string) bool {
	return s == nil || isBlank(*s)
}

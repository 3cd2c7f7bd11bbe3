package model

import (
	"slices"
	"time"
)

// Trend directions of a comparison.
const (
	TrendImproved  = "improved"
	TrendWorsened  = "worsened"
	TrendUnchanged = "unchanged"
)

// PageIssue is a single (issue type, page) pair.
// Comparisons work on pairs so that fixing one page of a merged issue
// shows up as a resolved item.
type PageIssue struct {
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`
	Page     string    `json:"page"`
}

// AuditSnapshot summarizes a stored audit without its issue details.
// It is one side of a comparison and one row of the audit history.
type AuditSnapshot struct {
	ID               string         `json:"id,omitempty"`
	Domain           string         `json:"domain,omitempty"`
	StartedAt        time.Time      `json:"started_at"`
	PagesCrawled     int            `json:"pages_crawled"`
	TotalIssues      int            `json:"total_issues"`
	IssuesBySeverity SeverityCounts `json:"issues_by_severity"`
}

// Comparison is the difference between two audits of the same domain.
type Comparison struct {
	// Domain is the audited hostname.
	Domain string `json:"domain"`

	// Previous is the older audit.
	Previous AuditSnapshot `json:"previous"`

	// Current is the newer audit.
	Current AuditSnapshot `json:"current"`

	// NewIssues are pairs present in Current but not in Previous.
	NewIssues []PageIssue `json:"new_issues,omitempty"`

	// ResolvedIssues are pairs present in Previous but not in Current.
	ResolvedIssues []PageIssue `json:"resolved_issues,omitempty"`

	// UnchangedCount is the number of pairs present in both audits.
	UnchangedCount int `json:"unchanged_count"`

	// Delta is Current minus Previous per severity.
	Delta SeverityCounts `json:"delta"`

	// Trend is one of TrendImproved, TrendWorsened or TrendUnchanged.
	Trend string `json:"trend"`
}

// NewAuditSnapshot builds the summary of an audit result.
func NewAuditSnapshot(r *AuditResult) AuditSnapshot {
	return AuditSnapshot{
		ID:               r.ID,
		Domain:           r.Domain,
		StartedAt:        r.StartedAt,
		PagesCrawled:     r.PagesCrawled,
		TotalIssues:      r.TotalIssues,
		IssuesBySeverity: r.IssuesBySeverity,
	}
}

// pageIssues flattens merged issues into sorted (type, page) pairs.
func pageIssues(r *AuditResult) []PageIssue {
	var pairs []PageIssue
	for _, issue := range r.Issues {
		for _, page := range issue.AffectedPages {
			pairs = append(pairs, PageIssue{Type: issue.Type, Severity: issue.Severity, Page: page})
		}
	}
	slices.SortFunc(pairs, comparePageIssue)
	return pairs
}

// comparePageIssue orders pairs by severity (high first), type, then page.
func comparePageIssue(a, b PageIssue) int {
	if a.Severity != b.Severity {
		return int(b.Severity) - int(a.Severity)
	}
	if a.Type != b.Type {
		return int(a.Type) - int(b.Type)
	}
	switch {
	case a.Page < b.Page:
		return -1
	case a.Page > b.Page:
		return 1
	default:
		return 0
	}
}

// Compare computes the difference between a previous and a current audit.
func Compare(previous, current *AuditResult) *Comparison {
	c := &Comparison{
		Domain:   current.Domain,
		Previous: NewAuditSnapshot(previous),
		Current:  NewAuditSnapshot(current),
	}

	prev := make(map[PageIssue]struct{})
	for _, p := range pageIssues(previous) {
		prev[p] = struct{}{}
	}
	curr := make(map[PageIssue]struct{})
	for _, p := range pageIssues(current) {
		curr[p] = struct{}{}
		if _, ok := prev[p]; ok {
			c.UnchangedCount++
			continue
		}
		c.NewIssues = append(c.NewIssues, p)
	}
	for _, p := range pageIssues(previous) {
		if _, ok := curr[p]; !ok {
			c.ResolvedIssues = append(c.ResolvedIssues, p)
		}
	}

	c.Delta = SeverityCounts{
		High:   current.IssuesBySeverity.High - previous.IssuesBySeverity.High,
		Medium: current.IssuesBySeverity.Medium - previous.IssuesBySeverity.Medium,
		Low:    current.IssuesBySeverity.Low - previous.IssuesBySeverity.Low,
	}
	c.Trend = trend(previous, current)

	return c
}

// trend weighs affected pages by severity; high counts the most.
func trend(previous, current *AuditResult) string {
	score := func(r *AuditResult) int {
		total := 0
		for _, issue := range r.Issues {
			weight := 1
			switch issue.Severity {
			case SeverityHigh:
				weight = 10
			case SeverityMedium:
				weight = 3
			}
			total += weight * len(issue.AffectedPages)
		}
		return total
	}

	prev, curr := score(previous), score(current)
	switch {
	case curr < prev:
		return TrendImproved
	case curr > prev:
		return TrendWorsened
	default:
		return TrendUnchanged
	}
}

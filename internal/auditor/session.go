package auditor

import (
	"slices"
	"time"

	"github.com/nao1215/seoaudit/internal/frontier"
	"github.com/nao1215/seoaudit/internal/model"
)

// CrawlSession holds the mutable state of one audit run.
// It is created by Run and discarded when the run ends.
type CrawlSession struct {
	// Frontier owns the pending queue and the visited set.
	Frontier *frontier.Frontier

	// SeedURL is the URL the crawl started from.
	SeedURL string

	// StartedAt is when the session was created.
	StartedAt time.Time

	pagesCrawled int
	totalElapsed time.Duration
	issues       *issueAccumulator
	redirects    []model.Redirect
}

// newCrawlSession creates a session around an initialized frontier.
func newCrawlSession(seedURL string, f *frontier.Frontier, startedAt time.Time) *CrawlSession {
	return &CrawlSession{
		Frontier:  f,
		SeedURL:   seedURL,
		StartedAt: startedAt,
		issues:    newIssueAccumulator(),
	}
}

// PagesCrawled returns the number of URLs dequeued and fetched so far.
func (s *CrawlSession) PagesCrawled() int {
	return s.pagesCrawled
}

// AverageResponse returns the mean fetch time of the pages crawled so far.
func (s *CrawlSession) AverageResponse() time.Duration {
	if s.pagesCrawled == 0 {
		return 0
	}
	return s.totalElapsed / time.Duration(s.pagesCrawled)
}

// Issues returns the merged issues in output order.
func (s *CrawlSession) Issues() []model.Issue {
	return s.issues.result()
}

// Redirects returns every redirect hop seen so far.
func (s *CrawlSession) Redirects() []model.Redirect {
	return slices.Clone(s.redirects)
}

// record adds a fetched page and its issues to the session.
func (s *CrawlSession) record(page *model.PageResult, issues []model.Issue) {
	s.pagesCrawled++
	s.totalElapsed += page.Elapsed
	s.redirects = append(s.redirects, page.Redirects...)
	for _, issue := range issues {
		s.issues.add(issue)
	}
}

// issueAccumulator merges issues of the same type.
// Types keep the order in which they were first detected, and affected
// pages keep the order in which they were first reported.
type issueAccumulator struct {
	order  []model.IssueType
	merged map[model.IssueType]*mergedIssue
}

type mergedIssue struct {
	issue model.Issue
	pages map[string]struct{}
}

func newIssueAccumulator() *issueAccumulator {
	return &issueAccumulator{
		merged: make(map[model.IssueType]*mergedIssue),
	}
}

// add merges issue into the entry of its type.
func (a *issueAccumulator) add(issue model.Issue) {
	m, ok := a.merged[issue.Type]
	if !ok {
		m = &mergedIssue{
			issue: model.Issue{
				Type:        issue.Type,
				Severity:    issue.Type.Severity(),
				Description: issue.Description,
			},
			pages: make(map[string]struct{}),
		}
		a.merged[issue.Type] = m
		a.order = append(a.order, issue.Type)
	}

	for _, page := range issue.AffectedPages {
		if _, dup := m.pages[page]; dup {
			continue
		}
		m.pages[page] = struct{}{}
		m.issue.AffectedPages = append(m.issue.AffectedPages, page)
	}
}

// result returns the merged issues ordered by severity, high first, then
// by first detection.
func (a *issueAccumulator) result() []model.Issue {
	issues := make([]model.Issue, 0, len(a.order))
	for _, t := range a.order {
		m := a.merged[t]
		issue := m.issue
		issue.AffectedPages = slices.Clone(m.issue.AffectedPages)
		issues = append(issues, issue)
	}

	slices.SortStableFunc(issues, func(x, y model.Issue) int {
		return int(y.Severity) - int(x.Severity)
	})

	return issues
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/seoaudit/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ActionPlan renders the prioritized action plan of an audit as markdown.
//
// Issues are grouped by severity, high first, with one bullet per issue
// type naming its affected pages. The plan ends with audit statistics.
// The output only depends on the issues and counters of the result, so two
// audits of an unchanged site produce the same plan.
func ActionPlan(result *model.AuditResult) string {
	md := markdown.NewMarkdown(io.Discard)
	title := cases.Title(language.English)

	md.H1("SEO Action Plan for " + result.Domain)
	md.PlainText("")

	for _, severity := range model.Severities {
		md.H2(title.String(severity.String()) + " Priority Items")
		md.PlainText("")

		issues := result.IssuesWithSeverity(severity)
		if len(issues) == 0 {
			md.PlainTextf("No %s priority issues found.", severity)
			md.PlainText("")
			continue
		}

		items := make([]string, 0, len(issues))
		for _, issue := range issues {
			items = append(items, actionItem(issue))
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	md.H2("Audit Statistics")
	md.PlainText("")
	md.BulletList(
		fmt.Sprintf("Total pages analyzed: %d", result.PagesCrawled),
		fmt.Sprintf("Total issues found: %d", result.TotalIssues),
		fmt.Sprintf("High: %d, Medium: %d, Low: %d",
			result.IssuesBySeverity.High, result.IssuesBySeverity.Medium, result.IssuesBySeverity.Low),
		fmt.Sprintf("Broken links: %d", brokenLinkCount(result)),
		fmt.Sprintf("Redirects: %d", len(result.Redirects)),
	)

	return md.String()
}

// actionItem renders one bullet: what to do and where.
func actionItem(issue model.Issue) string {
	info := issue.Type.Info()
	return fmt.Sprintf("%s (%s): %s Affected pages: %s",
		markdown.Bold(info.Title),
		pluralPages(len(issue.AffectedPages)),
		info.Recommendation,
		strings.Join(issue.AffectedPages, ", "),
	)
}

// brokenLinkCount returns the number of pages that could not be fetched.
func brokenLinkCount(result *model.AuditResult) int {
	issue, ok := result.Issue(model.IssueBrokenLinks)
	if !ok {
		return 0
	}
	return len(issue.AffectedPages)
}

func pluralPages(n int) string {
	if n == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", n)
}

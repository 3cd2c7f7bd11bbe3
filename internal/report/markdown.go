package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/seoaudit/internal/model"
)

// MarkdownWriter outputs audit results in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.AuditResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeSummary(md, result)
	w.writeIssues(md, result)
	w.writeRedirects(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with audit information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.AuditResult) {
	md.H1("SEO Audit Report")
	md.PlainText("")

	rows := [][]string{
		{"Domain", "`" + result.Domain + "`"},
	}
	if !result.StartedAt.IsZero() {
		rows = append(rows, []string{"Audit Date", result.StartedAt.Format("2006-01-02 15:04:05 MST")})
	}
	rows = append(rows,
		[]string{"Pages Crawled", strconv.Itoa(result.PagesCrawled)},
		[]string{"Duration", result.Duration().String()},
		[]string{"Average Response", result.AverageResponse().String()},
	)
	if result.ID != "" {
		rows = append(rows, []string{"Audit ID", "`" + result.ID + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.AuditResult) {
	md.H2("Severity Summary")
	md.PlainText("")

	counts := result.IssuesBySeverity
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Issue Types", "Affected Pages"},
		Rows: [][]string{
			{"🔴 High", strconv.Itoa(counts.High), strconv.Itoa(affectedPages(result, model.SeverityHigh))},
			{"🟡 Medium", strconv.Itoa(counts.Medium), strconv.Itoa(affectedPages(result, model.SeverityMedium))},
			{"🔵 Low", strconv.Itoa(counts.Low), strconv.Itoa(affectedPages(result, model.SeverityLow))},
			{"**Total**", "**" + strconv.Itoa(result.TotalIssues) + "**", "**" + strconv.Itoa(result.AffectedPageCount()) + "**"},
		},
	})
	md.PlainText("")

	if result.HasIssues() {
		w.writePieChart(md, result)
	}

	w.writeAlert(md, result)
}

// writePieChart writes a mermaid pie chart of affected pages per severity.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, result *model.AuditResult) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Affected Pages by Severity"),
		piechart.WithShowData(true),
	)

	for _, severity := range model.Severities {
		if n := affectedPages(result, severity); n > 0 {
			chart.LabelAndIntValue(severityLabel(severity), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.AuditResult) {
	counts := result.IssuesBySeverity
	switch {
	case counts.High > 0:
		md.Cautionf(
			"%d high priority issue type(s) hurt crawlability or user experience and should be fixed first.",
			counts.High,
		)
	case counts.Medium > 0:
		md.Warningf(
			"%d medium priority issue type(s) weaken how search engines present the site.",
			counts.Medium,
		)
	case result.HasIssues():
		md.Note("Only low priority issues detected.")
	default:
		md.Tip("No technical SEO issues detected.")
	}
	md.PlainText("")
}

// writeIssues writes every merged issue grouped by severity.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, result *model.AuditResult) {
	md.H2("Issues")
	md.PlainText("")

	if !result.HasIssues() {
		md.PlainText("No issues detected.")
		md.PlainText("")
		return
	}

	for _, severity := range model.Severities {
		issues := result.IssuesWithSeverity(severity)
		if len(issues) == 0 {
			continue
		}

		md.H3(severityLabel(severity))
		md.PlainText("")

		rows := make([][]string, len(issues))
		for i, issue := range issues {
			info := issue.Type.Info()
			rows[i] = []string{
				info.Title,
				"`" + issue.Type.String() + "`",
				strconv.Itoa(len(issue.AffectedPages)),
				truncateString(info.Recommendation, 80),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Issue", "Type", "Pages", "Recommendation"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, issue := range issues {
			md.Details(
				fmt.Sprintf("%s (%d)", issue.Type.Info().Title, len(issue.AffectedPages)),
				pageList(issue.AffectedPages),
			)
		}
		md.PlainText("")
	}
}

// writeRedirects lists redirect hops, if any.
func (w *MarkdownWriter) writeRedirects(md *markdown.Markdown, result *model.AuditResult) {
	if len(result.Redirects) == 0 {
		return
	}

	md.H2("Redirects")
	md.PlainText("")

	rows := make([][]string, len(result.Redirects))
	for i, r := range result.Redirects {
		rows[i] = []string{r.From, r.To, strconv.Itoa(r.StatusCode)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"From", "To", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [seoaudit](https://github.com/nao1215/seoaudit)*")
}

// affectedPages returns the number of distinct pages with issues of the given severity.
func affectedPages(result *model.AuditResult, severity model.Severity) int {
	seen := make(map[string]struct{})
	for _, issue := range result.IssuesWithSeverity(severity) {
		for _, p := range issue.AffectedPages {
			seen[p] = struct{}{}
		}
	}
	return len(seen)
}

// severityLabel returns the capitalized severity name.
func severityLabel(severity model.Severity) string {
	switch severity {
	case model.SeverityHigh:
		return "High"
	case model.SeverityMedium:
		return "Medium"
	case model.SeverityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// pageList renders URLs one per line for a details block.
func pageList(pages []string) string {
	return strings.Join(pages, "<br>")
}

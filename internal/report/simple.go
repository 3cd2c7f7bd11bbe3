package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/seoaudit/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether severities without issues are shown.
	showEmpty bool

	// verbose lists every affected page instead of a short sample.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// samplePages is the number of affected pages listed per issue without verbose.
const samplePages = 5

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the result in human-readable format.
func (w *SimpleWriter) Write(result *model.AuditResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeSummary(&sb, result)
	w.writeIssues(&sb, result)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with audit information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.AuditResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          SEO AUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Domain:         %s\n", result.Domain)
	if !result.StartedAt.IsZero() {
		fmt.Fprintf(sb, "Audit Date:     %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(sb, "Pages Crawled:  %d\n", result.PagesCrawled)
	fmt.Fprintf(sb, "Duration:       %s\n", result.Duration())
	fmt.Fprintf(sb, "Avg Response:   %s\n", result.AverageResponse())
	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, result *model.AuditResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SEVERITY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "  HIGH:     %d\n", result.IssuesBySeverity.High)
	fmt.Fprintf(sb, "  MEDIUM:   %d\n", result.IssuesBySeverity.Medium)
	fmt.Fprintf(sb, "  LOW:      %d\n", result.IssuesBySeverity.Low)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:    %d issue types on %d pages\n", result.TotalIssues, result.AffectedPageCount())
	sb.WriteString("\n")
}

// writeIssues writes all issues grouped by severity.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, result *model.AuditResult) {
	if !result.HasIssues() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ISSUES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, severity := range model.Severities {
		issues := result.IssuesWithSeverity(severity)
		if len(issues) == 0 && !w.showEmpty {
			continue
		}
		w.writeIssuesForSeverity(sb, severity, issues)
	}
}

// writeIssuesForSeverity writes issues of a specific severity level.
func (w *SimpleWriter) writeIssuesForSeverity(sb *strings.Builder, severity model.Severity, issues []model.Issue) {
	fmt.Fprintf(sb, "[%s] %s\n", severityIndicator(severity), strings.ToUpper(severity.String()))

	if len(issues) == 0 {
		sb.WriteString("  No issues\n\n")
		return
	}

	for _, issue := range issues {
		info := issue.Type.Info()
		fmt.Fprintf(sb, "  * %s (%d pages)\n", info.Title, len(issue.AffectedPages))
		fmt.Fprintf(sb, "    Fix: %s\n", info.Recommendation)

		pages := issue.AffectedPages
		if !w.verbose && len(pages) > samplePages {
			pages = pages[:samplePages]
		}
		for _, p := range pages {
			fmt.Fprintf(sb, "      - %s\n", p)
		}
		if hidden := len(issue.AffectedPages) - len(pages); hidden > 0 {
			fmt.Fprintf(sb, "      ... and %d more\n", hidden)
		}
	}
	sb.WriteString("\n")
}

// severityIndicator returns a visual indicator for the severity level.
func severityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by seoaudit\n")
	sb.WriteString("https://github.com/nao1215/seoaudit\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

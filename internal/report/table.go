package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nao1215/seoaudit/internal/model"
)

// Column widths of the issue table.
const (
	issueColumnWidth = 32
	pagesColumnWidth = 60
)

// TableWriter outputs audit results as box-drawn tables.
// It suits terminals where the text report is too long.
type TableWriter struct {
	baseWriter

	// style is the go-pretty table style.
	style table.Style
}

// TableWriterOption configures a TableWriter.
type TableWriterOption func(*TableWriter)

// WithTableStyle sets the go-pretty style, e.g. table.StyleLight.
func WithTableStyle(style table.Style) TableWriterOption {
	return func(w *TableWriter) {
		w.style = style
	}
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer, opts ...TableWriterOption) *TableWriter {
	w := &TableWriter{
		baseWriter: newBaseWriter(output),
		style:      table.StyleRounded,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders a summary table followed by one row per issue type.
func (w *TableWriter) Write(result *model.AuditResult) (int, error) {
	var sb strings.Builder

	summary := w.newTable(&sb)
	summary.SetTitle("SEO Audit: " + result.Domain)
	summary.AppendHeader(table.Row{"Pages", "High", "Medium", "Low", "Total", "Avg Response"})
	summary.AppendRow(table.Row{
		result.PagesCrawled,
		result.IssuesBySeverity.High,
		result.IssuesBySeverity.Medium,
		result.IssuesBySeverity.Low,
		result.TotalIssues,
		result.AverageResponse().String(),
	})
	summary.Render()
	sb.WriteString("\n")

	if !result.HasIssues() {
		sb.WriteString("No issues detected.\n")
		return w.output.Write([]byte(sb.String()))
	}

	issues := w.newTable(&sb)
	issues.Style().Options.SeparateRows = true
	issues.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: issueColumnWidth},
		{Number: 4, WidthMax: pagesColumnWidth},
	})
	issues.AppendHeader(table.Row{"Severity", "Issue", "Pages", "Affected"})
	for _, issue := range result.Issues {
		issues.AppendRow(table.Row{
			strings.ToUpper(issue.Severity.String()),
			issue.Type.Info().Title,
			len(issue.AffectedPages),
			affectedSample(issue.AffectedPages),
		})
	}
	issues.AppendFooter(table.Row{"Total", result.TotalIssues, result.AffectedPageCount(), ""})
	issues.Render()

	return w.output.Write([]byte(sb.String()))
}

// WriteHistory renders one row per stored audit.
func (w *TableWriter) WriteHistory(domain string, history []model.AuditSnapshot) (int, error) {
	var sb strings.Builder

	t := w.newTable(&sb)
	t.SetTitle(fmt.Sprintf("Audit history for %s", domain))
	t.AppendHeader(table.Row{"ID", "Date", "Pages", "High", "Medium", "Low", "Total"})
	for _, h := range history {
		t.AppendRow(table.Row{
			h.ID,
			h.StartedAt.Local().Format("2006-01-02 15:04:05"),
			h.PagesCrawled,
			h.IssuesBySeverity.High,
			h.IssuesBySeverity.Medium,
			h.IssuesBySeverity.Low,
			h.TotalIssues,
		})
	}
	t.AppendFooter(table.Row{"Audits", len(history), "", "", "", "", ""})
	t.Render()

	return w.output.Write([]byte(sb.String()))
}

// newTable creates a table that renders into sb.
func (w *TableWriter) newTable(sb *strings.Builder) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(sb)
	t.SetStyle(w.style)
	return t
}

// affectedSample lists up to three pages and how many were left out.
func affectedSample(pages []string) string {
	const limit = 3
	if len(pages) <= limit {
		return strings.Join(pages, "\n")
	}
	return strings.Join(pages[:limit], "\n") + fmt.Sprintf("\n... and %d more", len(pages)-limit)
}

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/seoaudit/internal/model"
)

// ComparisonFormat selects how a comparison is rendered.
type ComparisonFormat int

const (
	// ComparisonText renders plain text.
	ComparisonText ComparisonFormat = iota
	// ComparisonMarkdown renders markdown.
	ComparisonMarkdown
	// ComparisonJSON renders indented JSON.
	ComparisonJSON
)

// ComparisonWriter outputs the difference between two audits.
type ComparisonWriter struct {
	baseWriter
	format ComparisonFormat
}

// NewComparisonWriter creates a ComparisonWriter for the given format.
func NewComparisonWriter(output io.Writer, format ComparisonFormat) *ComparisonWriter {
	return &ComparisonWriter{
		baseWriter: newBaseWriter(output),
		format:     format,
	}
}

// Write outputs the comparison.
func (w *ComparisonWriter) Write(c *model.Comparison) (int, error) {
	switch w.format {
	case ComparisonJSON:
		return NewJSONWriter(w.output, WithPrettyPrint()).WriteValue(c)
	case ComparisonMarkdown:
		return w.writeMarkdown(c)
	default:
		return w.writeText(c)
	}
}

func (w *ComparisonWriter) writeMarkdown(c *model.Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Audit Comparison: " + c.Domain)
	md.PlainText("")
	md.H2("Summary")
	md.PlainText("")
	md.PlainTextf("%s %s", markdown.Bold("Trend:"), formatTrend(c.Trend))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Date", c.Previous.StartedAt.Format("2006-01-02 15:04"), c.Current.StartedAt.Format("2006-01-02 15:04"), "-"},
			{"Pages", strconv.Itoa(c.Previous.PagesCrawled), strconv.Itoa(c.Current.PagesCrawled),
				formatDelta(c.Current.PagesCrawled - c.Previous.PagesCrawled)},
			{"High", strconv.Itoa(c.Previous.IssuesBySeverity.High), strconv.Itoa(c.Current.IssuesBySeverity.High), formatDelta(c.Delta.High)},
			{"Medium", strconv.Itoa(c.Previous.IssuesBySeverity.Medium), strconv.Itoa(c.Current.IssuesBySeverity.Medium), formatDelta(c.Delta.Medium)},
			{"Low", strconv.Itoa(c.Previous.IssuesBySeverity.Low), strconv.Itoa(c.Current.IssuesBySeverity.Low), formatDelta(c.Delta.Low)},
			{"**Total**", "**" + strconv.Itoa(c.Previous.TotalIssues) + "**", "**" + strconv.Itoa(c.Current.TotalIssues) + "**",
				"**" + formatDelta(c.Current.TotalIssues-c.Previous.TotalIssues) + "**"},
		},
	})
	md.PlainText("")

	if len(c.NewIssues) > 0 {
		md.H2(fmt.Sprintf("New Issues (%d)", len(c.NewIssues)))
		md.PlainText("")
		items := make([]string, len(c.NewIssues))
		for i, p := range c.NewIssues {
			items[i] = fmt.Sprintf("%s %s: `%s`", markdown.Bold("["+p.Severity.String()+"]"), p.Type.Info().Title, p.Page)
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if len(c.ResolvedIssues) > 0 {
		md.H2(fmt.Sprintf("Resolved Issues (%d)", len(c.ResolvedIssues)))
		md.PlainText("")
		items := make([]string, len(c.ResolvedIssues))
		for i, p := range c.ResolvedIssues {
			items[i] = fmt.Sprintf("~~[%s] %s: `%s`~~", p.Severity, p.Type.Info().Title, p.Page)
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if c.UnchangedCount > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d issue(s) unchanged*", c.UnchangedCount)
	}

	return len(md.String()), md.Build()
}

func (w *ComparisonWriter) writeText(c *model.Comparison) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Audit Comparison: %s\n", c.Domain)
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&sb, "\nTrend: %s\n", formatTrend(c.Trend))
	fmt.Fprintf(&sb, "\nPrevious audit: %s\n", c.Previous.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Current audit:  %s\n", c.Current.StartedAt.Format("2006-01-02 15:04:05"))

	sb.WriteString("\nIssue Types by Severity:\n")
	fmt.Fprintf(&sb, "  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	sb.WriteString("  " + strings.Repeat("-", 45) + "\n")
	rows := []struct {
		name       string
		prev, curr int
		delta      int
	}{
		{"High", c.Previous.IssuesBySeverity.High, c.Current.IssuesBySeverity.High, c.Delta.High},
		{"Medium", c.Previous.IssuesBySeverity.Medium, c.Current.IssuesBySeverity.Medium, c.Delta.Medium},
		{"Low", c.Previous.IssuesBySeverity.Low, c.Current.IssuesBySeverity.Low, c.Delta.Low},
	}
	for _, r := range rows {
		fmt.Fprintf(&sb, "  %-10s  %-10d  %-10d  %-10s\n", r.name, r.prev, r.curr, formatDelta(r.delta))
	}
	sb.WriteString("  " + strings.Repeat("-", 45) + "\n")
	fmt.Fprintf(&sb, "  %-10s  %-10d  %-10d  %-10s\n", "Total",
		c.Previous.TotalIssues, c.Current.TotalIssues, formatDelta(c.Current.TotalIssues-c.Previous.TotalIssues))

	if len(c.NewIssues) > 0 {
		fmt.Fprintf(&sb, "\nNew Issues (%d):\n", len(c.NewIssues))
		for _, p := range c.NewIssues {
			fmt.Fprintf(&sb, "  [+] [%s] %s: %s\n", p.Severity, p.Type.Info().Title, p.Page)
		}
	}

	if len(c.ResolvedIssues) > 0 {
		fmt.Fprintf(&sb, "\nResolved Issues (%d):\n", len(c.ResolvedIssues))
		for _, p := range c.ResolvedIssues {
			fmt.Fprintf(&sb, "  [-] [%s] %s: %s\n", p.Severity, p.Type.Info().Title, p.Page)
		}
	}

	if c.UnchangedCount > 0 {
		fmt.Fprintf(&sb, "\nUnchanged: %d issue(s)\n", c.UnchangedCount)
	}

	return w.output.Write([]byte(sb.String()))
}

// formatTrend formats the trend for display.
func formatTrend(trend string) string {
	switch trend {
	case model.TrendImproved:
		return "IMPROVED (fewer issues)"
	case model.TrendWorsened:
		return "WORSENED (more issues)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

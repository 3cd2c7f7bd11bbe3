// Package report renders audit results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown report with tables and a severity chart
//   - TableWriter: Compact box-drawn tables for terminals
//
// ActionPlan renders the markdown action plan stored in every AuditResult,
// and ComparisonWriter renders the difference between two audits.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report

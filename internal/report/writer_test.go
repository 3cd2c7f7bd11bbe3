package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
)

// createTestResult creates an audit result with sample data for testing.
func createTestResult() *model.AuditResult {
	broken := model.NewIssue(model.IssueBrokenLinks, "https://example.com/missing")
	meta := model.NewIssue(model.IssueMissingMetaDescription, "https://example.com/")
	meta.AffectedPages = append(meta.AffectedPages, "https://example.com/about")
	alt := model.NewIssue(model.IssueMissingAltTags, "https://example.com/gallery")

	result := &model.AuditResult{
		ID:                "3f6c2a4e-0000-4000-8000-000000000001",
		Domain:            "example.com",
		SeedURL:           "https://example.com/",
		StartedAt:         time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		DurationMS:        1500,
		PagesCrawled:      4,
		AverageResponseMS: 120,
		Issues:            []model.Issue{broken, meta, alt},
		Redirects: []model.Redirect{
			{From: "http://example.com/old", To: "https://example.com/about", StatusCode: 301},
		},
	}
	for _, issue := range result.Issues {
		result.IssuesBySeverity.Add(issue.Severity)
	}
	result.TotalIssues = len(result.Issues)
	result.ActionPlan = ActionPlan(result)
	return result
}

// createCleanResult creates a result without issues.
func createCleanResult() *model.AuditResult {
	result := &model.AuditResult{
		Domain:       "clean.example",
		StartedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		PagesCrawled: 2,
	}
	result.ActionPlan = ActionPlan(result)
	return result
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SEO AUDIT REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "example.com") {
			t.Error("expected output to contain domain")
		}
		if !strings.Contains(output, "Pages Crawled:  4") {
			t.Error("expected output to contain page count")
		}
	})

	t.Run("writes severity summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"SEVERITY SUMMARY", "HIGH:     1", "MEDIUM:   1", "LOW:      1"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists issues with pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, model.IssueBrokenLinks.Info().Title) {
			t.Error("expected broken links title")
		}
		if !strings.Contains(output, "- https://example.com/about") {
			t.Error("expected affected page to be listed")
		}
		if strings.Index(output, "[!!] HIGH") > strings.Index(output, "[-] LOW") {
			t.Error("expected high severity before low severity")
		}
	})

	t.Run("hides empty sections by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createCleanResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "ISSUES") {
			t.Error("expected no issues section for a clean site")
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(createCleanResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No issues") {
			t.Error("expected empty sections with WithShowEmpty")
		}
	})

	t.Run("samples pages unless verbose", func(t *testing.T) {
		t.Parallel()

		result := createTestResult()
		for i := range 10 {
			result.Issues[2].AffectedPages = append(result.Issues[2].AffectedPages,
				"https://example.com/img"+string(rune('a'+i)))
		}

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "... and 6 more") {
			t.Errorf("expected truncated page list, got:\n%s", buf.String())
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "... and") {
			t.Error("verbose output should list every page")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output round trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Count(output, "\n") != 1 {
			t.Error("expected single-line JSON")
		}

		var got model.AuditResult
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Domain != "example.com" || got.TotalIssues != 3 {
			t.Errorf("unexpected decoded result: %+v", got)
		}
	})

	t.Run("uses wire names", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{`"pages_crawled":4`, `"type":"broken_links"`, `"severity":"high"`, `"action_plan":`} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected %s in JSON output", want)
			}
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"domain\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("full writer wraps version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got JSONReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Version != "v1.2.3" || got.Result == nil || got.Result.Domain != "example.com" {
			t.Errorf("unexpected report: %+v", got)
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# SEO Audit Report",
			"`example.com`",
			"mermaid",
			model.IssueMissingMetaDescription.Info().Title,
			"https://example.com/about",
			"http://example.com/old",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected markdown to contain %q", want)
			}
		}
	})

	t.Run("clean site", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createCleanResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "clean.example") {
			t.Error("expected domain in output")
		}
	})
}

func TestTableWriter(t *testing.T) {
	t.Parallel()

	t.Run("result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTableWriter(&buf).Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"example.com", "HIGH", model.IssueBrokenLinks.Info().Title, "120ms"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected table to contain %q", want)
			}
		}
	})

	t.Run("clean result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTableWriter(&buf).Write(createCleanResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No issues detected.") {
			t.Error("expected clean message")
		}
	})

	t.Run("history", func(t *testing.T) {
		t.Parallel()

		history := []model.AuditSnapshot{
			model.NewAuditSnapshot(createTestResult()),
			model.NewAuditSnapshot(createCleanResult()),
		}

		var buf bytes.Buffer
		if _, err := NewTableWriter(&buf).WriteHistory("example.com", history); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "3f6c2a4e-0000-4000-8000-000000000001") {
			t.Error("expected audit ID in history table")
		}
	})
}

func TestAffectedSample(t *testing.T) {
	t.Parallel()

	if got := affectedSample([]string{"a", "b"}); got != "a\nb" {
		t.Errorf("unexpected sample: %q", got)
	}
	if got := affectedSample([]string{"a", "b", "c", "d", "e"}); got != "a\nb\nc\n... and 2 more" {
		t.Errorf("unexpected sample: %q", got)
	}
}

func TestActionPlan(t *testing.T) {
	t.Parallel()

	t.Run("groups issues by severity", func(t *testing.T) {
		t.Parallel()

		plan := ActionPlan(createTestResult())

		high := strings.Index(plan, "## High Priority Items")
		medium := strings.Index(plan, "## Medium Priority Items")
		low := strings.Index(plan, "## Low Priority Items")
		stats := strings.Index(plan, "## Audit Statistics")
		if high < 0 || medium < high || low < medium || stats < low {
			t.Fatalf("unexpected section order:\n%s", plan)
		}

		broken := strings.Index(plan, model.IssueBrokenLinks.Info().Title)
		if broken < high || broken > medium {
			t.Error("broken links should be listed under high priority")
		}
		if !strings.Contains(plan, "https://example.com/, https://example.com/about") {
			t.Error("expected affected pages to be listed")
		}
	})

	t.Run("names the domain", func(t *testing.T) {
		t.Parallel()

		if !strings.HasPrefix(ActionPlan(createTestResult()), "# SEO Action Plan for example.com") {
			t.Error("expected plan heading with domain")
		}
	})

	t.Run("empty severities", func(t *testing.T) {
		t.Parallel()

		plan := ActionPlan(createCleanResult())
		for _, want := range []string{
			"No high priority issues found.",
			"No medium priority issues found.",
			"No low priority issues found.",
			"Total pages analyzed: 2",
		} {
			if !strings.Contains(plan, want) {
				t.Errorf("expected plan to contain %q", want)
			}
		}
	})

	t.Run("statistics", func(t *testing.T) {
		t.Parallel()

		plan := ActionPlan(createTestResult())
		for _, want := range []string{
			"Total issues found: 3",
			"High: 1, Medium: 1, Low: 1",
			"Broken links: 1",
			"Redirects: 1",
		} {
			if !strings.Contains(plan, want) {
				t.Errorf("expected plan to contain %q", want)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		a := createTestResult()
		b := createTestResult()
		b.StartedAt = b.StartedAt.Add(time.Hour)
		b.DurationMS = 9000
		b.AverageResponseMS = 900
		b.ID = "other"
		if ActionPlan(a) != ActionPlan(b) {
			t.Error("plan must only depend on issues and counters")
		}
	})
}

func TestComparisonWriter(t *testing.T) {
	t.Parallel()

	previous := createTestResult()
	current := createTestResult()
	current.StartedAt = current.StartedAt.Add(24 * time.Hour)
	current.Issues = current.Issues[1:]
	current.IssuesBySeverity = model.SeverityCounts{Medium: 1, Low: 1}
	current.TotalIssues = 2
	comparison := model.Compare(previous, current)

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewComparisonWriter(&buf, ComparisonText).Write(comparison); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"Audit Comparison: example.com", "IMPROVED", "Resolved Issues (1)", "[-] [high]", "Unchanged: 3"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected text to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewComparisonWriter(&buf, ComparisonMarkdown).Write(comparison); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"# Audit Comparison: example.com", "| High", "-1", "~~[high]"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected markdown to contain %q", want)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewComparisonWriter(&buf, ComparisonJSON).Write(comparison); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got model.Comparison
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Trend != model.TrendImproved || len(got.ResolvedIssues) != 1 {
			t.Errorf("unexpected comparison: %+v", got)
		}
	})
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delta int
		want  string
	}{
		{3, "+3"},
		{0, "0"},
		{-2, "-2"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.delta); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

// errWriter fails every write.
type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
		n, err := mw.Write(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != a.Len()+b.Len() {
			t.Errorf("expected %d bytes, got %d", a.Len()+b.Len(), n)
		}
	})

	t.Run("stops on error", func(t *testing.T) {
		t.Parallel()

		var b bytes.Buffer
		mw := NewMultiWriter(NewJSONWriter(errWriter{}), NewJSONWriter(&b))
		if _, err := mw.Write(createTestResult()); err == nil {
			t.Error("expected error")
		}
		if b.Len() != 0 {
			t.Error("second writer should not run after an error")
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"日本語のタイトル", 5, "日本..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *AuditDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// newResult creates an audit result with one issue per given type.
func newResult(domain string, startedAt time.Time, types ...model.IssueType) *model.AuditResult {
	result := &model.AuditResult{
		Domain:       domain,
		SeedURL:      "https://" + domain + "/",
		StartedAt:    startedAt,
		PagesCrawled: 3,
	}
	for _, typ := range types {
		issue := model.NewIssue(typ, "https://"+domain+"/")
		result.Issues = append(result.Issues, issue)
		result.IssuesBySeverity.Add(issue.Severity)
	}
	result.TotalIssues = len(result.Issues)
	return result
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %s", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns ErrDatabaseNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Errorf("expected ErrDatabaseNotFound, got %v", err)
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if _, err := db.SaveAudit(context.Background(), newResult("example.com", time.Now())); err != nil {
			t.Fatal(err)
		}
		_ = db.Close()

		reopened, err := Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer reopened.Close()

		if _, err := reopened.LatestAudit(context.Background(), "example.com"); err != nil {
			t.Errorf("expected stored audit after reopen, got %v", err)
		}
	})
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists || !opts.EnableWAL {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}

func TestSaveAudit(t *testing.T) {
	t.Parallel()

	t.Run("assigns an ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		result := newResult("example.com", time.Now(), model.IssueBrokenLinks)

		id, err := db.SaveAudit(context.Background(), result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id == "" || result.ID != id {
			t.Errorf("expected ID to be assigned, got %q / %q", id, result.ID)
		}
	})

	t.Run("keeps an existing ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		result := newResult("example.com", time.Now())
		result.ID = "fixed-id"

		id, err := db.SaveAudit(context.Background(), result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "fixed-id" {
			t.Errorf("expected fixed-id, got %s", id)
		}
		if _, err := db.SaveAudit(context.Background(), result); err == nil {
			t.Error("expected duplicate ID to fail")
		}
	})

	t.Run("round trips the result", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		result := newResult("Example.com", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			model.IssueBrokenLinks, model.IssueMissingMetaDescription)
		result.ActionPlan = "# plan"

		id, err := db.SaveAudit(context.Background(), result)
		if err != nil {
			t.Fatal(err)
		}

		got, err := db.AuditByID(context.Background(), id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Domain != "Example.com" || got.TotalIssues != 2 || got.ActionPlan != "# plan" {
			t.Errorf("unexpected result: %+v", got)
		}
		if len(got.Issues) != 2 || got.Issues[0].Type != model.IssueBrokenLinks {
			t.Errorf("unexpected issues: %+v", got.Issues)
		}
		if !got.StartedAt.Equal(result.StartedAt) {
			t.Errorf("expected %v, got %v", result.StartedAt, got.StartedAt)
		}
	})
}

func TestLatestAudit(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrAuditNotFound for unknown domain", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if _, err := db.LatestAudit(context.Background(), "unknown.com"); !errors.Is(err, ErrAuditNotFound) {
			t.Errorf("expected ErrAuditNotFound, got %v", err)
		}
	})

	t.Run("returns the newest audit", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		if _, err := db.SaveAudit(ctx, newResult("example.com", base.Add(time.Hour), model.IssueBrokenLinks)); err != nil {
			t.Fatal(err)
		}
		if _, err := db.SaveAudit(ctx, newResult("example.com", base)); err != nil {
			t.Fatal(err)
		}
		if _, err := db.SaveAudit(ctx, newResult("other.com", base.Add(2*time.Hour))); err != nil {
			t.Fatal(err)
		}

		got, err := db.LatestAudit(ctx, "EXAMPLE.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.TotalIssues != 1 {
			t.Errorf("expected the later audit, got %+v", got)
		}
	})
}

func TestRecentAudits(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 4 {
		if _, err := db.SaveAudit(ctx, newResult("example.com", base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.RecentAudits(ctx, "example.com", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 audits, got %d", len(got))
	}
	if !got[0].StartedAt.After(got[1].StartedAt) {
		t.Error("expected newest first")
	}
}

func TestAuditByID(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	if _, err := db.AuditByID(context.Background(), "missing"); !errors.Is(err, ErrAuditNotFound) {
		t.Errorf("expected ErrAuditNotFound, got %v", err)
	}
}

func TestAuditHistory(t *testing.T) {
	t.Parallel()

	t.Run("returns empty list for unknown domain", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		history, err := db.AuditHistory(context.Background(), "unknown.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("expected empty history, got %d", len(history))
		}
	})

	t.Run("returns summaries newest first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		first := newResult("example.com", base, model.IssueBrokenLinks, model.IssueMissingAltTags)
		second := newResult("example.com", base.Add(24*time.Hour), model.IssueMissingAltTags)
		for _, r := range []*model.AuditResult{first, second} {
			if _, err := db.SaveAudit(ctx, r); err != nil {
				t.Fatal(err)
			}
		}

		history, err := db.AuditHistory(ctx, "example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(history) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(history))
		}
		if history[0].ID != second.ID || history[1].ID != first.ID {
			t.Errorf("unexpected order: %s, %s", history[0].ID, history[1].ID)
		}
		if history[1].IssuesBySeverity.High != 1 || history[1].IssuesBySeverity.Low != 1 {
			t.Errorf("unexpected counts: %+v", history[1].IssuesBySeverity)
		}
		if !history[0].StartedAt.Equal(second.StartedAt) {
			t.Errorf("unexpected timestamp: %v", history[0].StartedAt)
		}
	})
}

func TestListDomains(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	for _, domain := range []string{"b.com", "a.com", "B.com"} {
		if _, err := db.SaveAudit(ctx, newResult(domain, time.Now())); err != nil {
			t.Fatal(err)
		}
	}

	domains, err := db.ListDomains(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(domains) != 2 || domains[0] != "a.com" || domains[1] != "b.com" {
		t.Errorf("unexpected domains: %v", domains)
	}
}

func TestPages(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.SaveAudit(ctx, newResult("example.com", time.Now()))
	if err != nil {
		t.Fatal(err)
	}

	title := "Home"
	home := &model.PageResult{
		URL:         "https://example.com/",
		StatusCode:  200,
		Elapsed:     150 * time.Millisecond,
		ContentType: "text/html",
		Title:       &title,
	}
	missing := &model.PageResult{URL: "https://example.com/gone", StatusCode: 404}

	records := []PageRecord{NewPageRecord(home, 0), NewPageRecord(missing, 1)}
	if err := db.SavePages(ctx, id, records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Saving again replaces the records.
	records[1].IssueCount = 2
	if err := db.SavePages(ctx, id, records[1:]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := db.AuditPages(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(got))
	}
	if got[0].Title != "Home" || got[0].ElapsedMS != 150 || got[0].StatusCode != 200 {
		t.Errorf("unexpected first record: %+v", got[0])
	}
	if got[1].IssueCount != 2 {
		t.Errorf("expected updated issue count, got %d", got[1].IssueCount)
	}

	none, err := db.AuditPages(ctx, "other")
	if err != nil || len(none) != 0 {
		t.Errorf("expected no pages, got %v (%v)", none, err)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		zero bool
	}{
		{"2026-01-02T03:04:05.123456789Z", false},
		{"2026-01-02T03:04:05Z", false},
		{"2026-01-02 03:04:05", false},
		{"not a time", true},
	}
	for _, tt := range tests {
		if got := parseTimestamp(tt.in); got.IsZero() != tt.zero {
			t.Errorf("parseTimestamp(%q) = %v", tt.in, got)
		}
	}
}

package database

import (
	"context"
	"fmt"

	"github.com/nao1215/seoaudit/internal/model"
)

// PageRecord is the stored crawl record of one page of an audit.
type PageRecord struct {
	URL         string `json:"url"`
	StatusCode  int    `json:"status_code"`
	ElapsedMS   int64  `json:"elapsed_ms"`
	ContentType string `json:"content_type,omitempty"`
	Title       string `json:"title,omitempty"`
	IssueCount  int    `json:"issue_count"`
}

// NewPageRecord builds the crawl record of a fetched page.
func NewPageRecord(page *model.PageResult, issueCount int) PageRecord {
	record := PageRecord{
		URL:         page.URL,
		StatusCode:  page.StatusCode,
		ElapsedMS:   page.Elapsed.Milliseconds(),
		ContentType: page.ContentType,
		IssueCount:  issueCount,
	}
	if page.Title != nil {
		record.Title = *page.Title
	}
	return record
}

// SavePages stores the crawl records of an audit in one transaction.
// A URL recorded twice for the same audit keeps the latest record.
func (adb *AuditDB) SavePages(ctx context.Context, auditID string, pages []PageRecord) error {
	tx, err := adb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	query := `
	INSERT INTO pages (audit_id, url, status_code, elapsed_ms, content_type, title, issue_count)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(audit_id, url) DO UPDATE SET
		status_code = excluded.status_code,
		elapsed_ms = excluded.elapsed_ms,
		content_type = excluded.content_type,
		title = excluded.title,
		issue_count = excluded.issue_count
	`

	for _, p := range pages {
		if _, err := tx.ExecContext(ctx, query,
			auditID, p.URL, p.StatusCode, p.ElapsedMS, p.ContentType, p.Title, p.IssueCount,
		); err != nil {
			return fmt.Errorf("failed to save page %s: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pages: %w", err)
	}
	return nil
}

// AuditPages returns the crawl records of an audit in the order they were saved.
func (adb *AuditDB) AuditPages(ctx context.Context, auditID string) ([]PageRecord, error) {
	query := `
	SELECT url, status_code, elapsed_ms, content_type, title, issue_count
	FROM pages
	WHERE audit_id = ?
	ORDER BY id
	`

	rows, err := adb.db.QueryContext(ctx, query, auditID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []PageRecord
	for rows.Next() {
		var p PageRecord
		if err := rows.Scan(&p.URL, &p.StatusCode, &p.ElapsedMS, &p.ContentType, &p.Title, &p.IssueCount); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/seoaudit/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "seoaudit.db"

// AuditDB provides SQLite-based storage for audit results.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// Otherwise a missing database yields ErrDatabaseNotFound.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Path returns the path of the database file.
func (adb *AuditDB) Path() string {
	return adb.dbPath
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Audits store complete results as JSON
	CREATE TABLE IF NOT EXISTS audits (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		domain TEXT NOT NULL,
		started_at TEXT NOT NULL,
		pages_crawled INTEGER NOT NULL,
		total_issues INTEGER NOT NULL,
		high INTEGER NOT NULL DEFAULT 0,
		medium INTEGER NOT NULL DEFAULT 0,
		low INTEGER NOT NULL DEFAULT 0,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audits_domain ON audits(domain);
	CREATE INDEX IF NOT EXISTS idx_audits_started ON audits(started_at);

	-- Pages store one crawl record per fetched URL of an audit
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		audit_id TEXT NOT NULL REFERENCES audits(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		status_code INTEGER,
		elapsed_ms INTEGER,
		content_type TEXT,
		title TEXT,
		issue_count INTEGER DEFAULT 0,
		UNIQUE(audit_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_audit ON pages(audit_id);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveAudit stores an audit result and returns its ID.
// A result without an ID is assigned a new UUID, which is written back to it.
func (adb *AuditDB) SaveAudit(ctx context.Context, result *model.AuditResult) (string, error) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to serialize audit result: %w", err)
	}

	query := `
	INSERT INTO audits (id, domain, started_at, pages_crawled, total_issues, high, medium, low, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = adb.db.ExecContext(ctx, query,
		result.ID,
		strings.ToLower(result.Domain),
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.PagesCrawled,
		result.TotalIssues,
		result.IssuesBySeverity.High,
		result.IssuesBySeverity.Medium,
		result.IssuesBySeverity.Low,
		string(resultJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save audit: %w", err)
	}

	return result.ID, nil
}

// LatestAudit retrieves the most recent audit of a domain.
func (adb *AuditDB) LatestAudit(ctx context.Context, domain string) (*model.AuditResult, error) {
	results, err := adb.RecentAudits(ctx, domain, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAuditNotFound, domain)
	}
	return results[0], nil
}

// RecentAudits retrieves up to limit audits of a domain, newest first.
func (adb *AuditDB) RecentAudits(ctx context.Context, domain string, limit int) ([]*model.AuditResult, error) {
	query := `
	SELECT result_json FROM audits
	WHERE domain = ?
	ORDER BY started_at DESC, seq DESC
	LIMIT ?
	`

	rows, err := adb.db.QueryContext(ctx, query, strings.ToLower(domain), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audits: %w", err)
	}
	defer rows.Close()

	var results []*model.AuditResult
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan audit: %w", err)
		}

		var result model.AuditResult
		if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
			return nil, fmt.Errorf("failed to parse audit: %w", err)
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}

// AuditByID retrieves an audit by its ID.
func (adb *AuditDB) AuditByID(ctx context.Context, id string) (*model.AuditResult, error) {
	var resultJSON string
	err := adb.db.QueryRowContext(ctx, `SELECT result_json FROM audits WHERE id = ?`, id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAuditNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit: %w", err)
	}

	var result model.AuditResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse audit: %w", err)
	}

	return &result, nil
}

// AuditHistory returns summaries of the audits of a domain, newest first.
// It reads only the summary columns, not the stored results.
func (adb *AuditDB) AuditHistory(ctx context.Context, domain string) ([]model.AuditSnapshot, error) {
	query := `
	SELECT id, domain, started_at, pages_crawled, total_issues, high, medium, low
	FROM audits
	WHERE domain = ?
	ORDER BY started_at DESC, seq DESC
	`

	rows, err := adb.db.QueryContext(ctx, query, strings.ToLower(domain))
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var history []model.AuditSnapshot
	for rows.Next() {
		var s model.AuditSnapshot
		var startedAt string

		if err := rows.Scan(
			&s.ID,
			&s.Domain,
			&startedAt,
			&s.PagesCrawled,
			&s.TotalIssues,
			&s.IssuesBySeverity.High,
			&s.IssuesBySeverity.Medium,
			&s.IssuesBySeverity.Low,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}

		s.StartedAt = parseTimestamp(startedAt)
		history = append(history, s)
	}

	return history, rows.Err()
}

// ListDomains returns every audited domain in alphabetical order.
func (adb *AuditDB) ListDomains(ctx context.Context) ([]string, error) {
	rows, err := adb.db.QueryContext(ctx, `SELECT DISTINCT domain FROM audits ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

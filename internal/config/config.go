package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/seoaudit/internal/auditor"
	"github.com/nao1215/seoaudit/internal/detector"
	"github.com/nao1215/seoaudit/internal/fetcher"
)

// Default configuration values.
const (
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = fetcher.DefaultTimeout

	// DefaultCrawlDepth of 0 means the crawl is bounded by MaxPages only.
	DefaultCrawlDepth = 0

	// DefaultBatchSize is the number of domains audited concurrently.
	DefaultBatchSize = auditor.DefaultConcurrency

	// DefaultMaxPages is the number of pages crawled per domain.
	DefaultMaxPages = auditor.DefaultMaxPages

	// MaxPagesLimit is the largest accepted page limit.
	MaxPagesLimit = auditor.MaxPagesLimit

	// DefaultSlowThreshold is the response time above which a page is slow.
	DefaultSlowThreshold = detector.DefaultSlowThreshold

	// DefaultUserAgent identifies seoaudit in HTTP requests.
	DefaultUserAgent = fetcher.DefaultUserAgent

	// DefaultMaxBodySize limits the response body size to read.
	DefaultMaxBodySize = fetcher.DefaultMaxBodySize

	// DefaultListenAddress is the address of the HTTP API server.
	DefaultListenAddress = ":8080"

	// DefaultScheme is prepended to audited domains.
	DefaultScheme = "https"

	// AppName is the application name used for XDG directory paths.
	AppName = "seoaudit"
)

// Config holds all configuration options for seoaudit.
// It is populated from CLI flags and passed through the application
// rather than kept in global state.
type Config struct {
	// Timeout is the timeout of each HTTP request.
	Timeout time.Duration

	// CrawlDepth is the maximum number of link hops from the seed.
	// Zero means unlimited.
	CrawlDepth int

	// MaxPages is the maximum number of pages to crawl per domain.
	MaxPages int

	// SlowThreshold is the response time above which a page is reported as slow.
	SlowThreshold time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// BatchSize is the number of concurrent audits when auditing multiple domains.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the default locations.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	SiteConfigs *File

	// JSONReport selects JSON output. Mutually exclusive with the other formats.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with the other formats.
	MarkdownReport bool

	// TableReport selects table output. Mutually exclusive with the other formats.
	TableReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Targets is the list of domains to audit.
	Targets []string

	// DBDir is the directory of the SQLite audit history.
	// Defaults to the XDG data directory (~/.local/share/seoaudit on Linux).
	DBDir string

	// SaveToDB stores audit results for history and comparison.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default.
	MaxBodySize int64

	// RespectRobots honors robots.txt Disallow rules.
	RespectRobots bool

	// SkipQueryURLs skips URLs with a query string.
	SkipQueryURLs bool

	// ListenAddress is the address the API server listens on.
	ListenAddress string

	// Scheme is prepended to the audited domains: "https" or "http".
	Scheme string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:       DefaultTimeout,
		CrawlDepth:    DefaultCrawlDepth,
		MaxPages:      DefaultMaxPages,
		SlowThreshold: DefaultSlowThreshold,
		BatchSize:     DefaultBatchSize,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
		ListenAddress: DefaultListenAddress,
		Scheme:        DefaultScheme,
		SaveToDB:      true,
		DBDir:         XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for seoaudit.
// On Linux: ~/.local/share/seoaudit
// On macOS: ~/Library/Application Support/seoaudit
// On Windows: %LOCALAPPDATA%\seoaudit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for seoaudit.
// On Linux: ~/.config/seoaudit
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for seoaudit.
// On Linux: ~/.cache/seoaudit
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Site returns the effective settings for a domain: the global values
// overridden by the matching entry of the configuration file.
func (c *Config) Site(domain string) SiteConfig {
	site := c.SiteConfigs.GetSiteConfig(domain)

	if site.UserAgent == "" {
		site.UserAgent = c.UserAgent
	}
	if site.MaxPages == 0 {
		site.MaxPages = c.MaxPages
	}
	if site.Depth == 0 {
		site.Depth = c.CrawlDepth
	}
	if site.SkipQueryURLs == nil {
		skip := c.SkipQueryURLs
		site.SkipQueryURLs = &skip
	}
	if site.RespectRobots == nil {
		respect := c.RespectRobots
		site.RespectRobots = &respect
	}

	return site
}

// Validate checks if the configuration is valid.
// It returns the first sentinel error describing what is invalid.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return c.ValidateOptions()
}

// ValidateOptions checks every option except the targets.
// The serve command uses it, since domains arrive with each request.
func (c *Config) ValidateOptions() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxPages < 1 || c.MaxPages > MaxPagesLimit {
		return ErrInvalidMaxPages
	}
	if c.CrawlDepth < 0 {
		return ErrInvalidDepth
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	formats := 0
	for _, set := range []bool{c.JSONReport, c.MarkdownReport, c.TableReport} {
		if set {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	if c.SlowThreshold <= 0 {
		return ErrInvalidSlowThreshold
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Scheme != "http" && c.Scheme != "https" {
		return ErrInvalidScheme
	}

	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/seoaudit/internal/auditor"
	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/detector"
	"github.com/nao1215/seoaudit/internal/fetcher"
	seolog "github.com/nao1215/seoaudit/internal/log"
	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/report"
	"github.com/spf13/cobra"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "audit [domain...]",
		Aliases: []string{"audit-site"},
		Short:   "Crawl a website and report SEO issues",
		Long: `Audit crawls a website breadth-first starting at its home page and checks
every page for technical SEO issues:
- Missing, short or long titles and meta descriptions
- Images without alt text
- Broken links and slow pages
- Missing or multiple h1 headings, oversized pages

Only pages on the same host as the home page are crawled. The result ends
with an action plan ordered by priority.

Examples:
  # Audit a single site
  seoaudit audit example.com

  # Audit up to 100 pages, at most 3 links deep
  seoaudit audit --max-pages 100 --depth 3 example.com

  # Audit several sites, two at a time
  seoaudit audit --batch 2 example.com example.org blog.example.net

  # Write a Markdown report to a file
  seoaudit audit --markdown -o reports/example.md example.com

  # Output JSON without storing the result in the history database
  seoaudit audit --json --no-save example.com

Configuration file (.seoaudit) example:
  sites:
    staging.example.com:
      cookie: "preview_session=abc123"
      maxPages: 100
      ignorePatterns:
        - "/cart/*"`,
		Args: cobra.ArbitraryArgs,
		RunE: runAuditCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		fmt.Sprintf("Maximum number of pages to crawl per site (1-%d)", config.MaxPagesLimit))
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum number of link hops from the home page (0 = unlimited)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Duration("slow-threshold", config.DefaultSlowThreshold,
		"Response time above which a page is reported as slow")
	cmd.Flags().Bool("respect-robots", false,
		"Do not crawl URLs disallowed by robots.txt")
	cmd.Flags().Bool("skip-query", false,
		"Do not crawl URLs with a query string")
	cmd.Flags().String("scheme", config.DefaultScheme,
		"Scheme used to reach the sites (https or http)")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sites audited concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .seoaudit in current, XDG config or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report")
	cmd.Flags().Bool("table", false,
		"Output report as tables")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("quiet", "q", false,
		"Do not print the text summary when writing a report file, and hide the progress bar")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not store the result in the history database")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := seolog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	run := &auditRun{
		cfg:    cfg,
		logger: logger,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
		quiet:  quiet,
	}
	if !quiet {
		run.progressOut = cmd.ErrOrStderr()
	}

	return run.execute(ctx)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	flags := cmd.Flags()

	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.CrawlDepth, err = flags.GetInt("depth"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.SlowThreshold, err = flags.GetDuration("slow-threshold"); err != nil {
		return nil, err
	}
	if cfg.RespectRobots, err = flags.GetBool("respect-robots"); err != nil {
		return nil, err
	}
	if cfg.SkipQueryURLs, err = flags.GetBool("skip-query"); err != nil {
		return nil, err
	}
	if cfg.Scheme, err = flags.GetString("scheme"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.TableReport, err = flags.GetBool("table"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	if cfg.SiteConfigs, err = loadSiteConfigs(cfg.ConfigFilePath); err != nil {
		return nil, err
	}
	cfg.SiteConfigs.ApplyOverrides(flagOverrides(cmd, cfg))

	cfg.Targets = uniqueTargets(args)

	return cfg, nil
}

// flagOverrides collects the crawl settings given explicitly on the command
// line, so they win over the configuration file.
func flagOverrides(cmd *cobra.Command, cfg *config.Config) config.Overrides {
	flags := cmd.Flags()

	var o config.Overrides
	if flags.Changed("max-pages") {
		o.MaxPages = &cfg.MaxPages
	}
	if flags.Changed("depth") {
		o.Depth = &cfg.CrawlDepth
	}
	if flags.Changed("skip-query") {
		o.SkipQueryURLs = &cfg.SkipQueryURLs
	}
	if flags.Changed("respect-robots") {
		o.RespectRobots = &cfg.RespectRobots
	}
	return o
}

// loadSiteConfigs loads the configuration file. A missing file is an error
// only when its path was given explicitly.
func loadSiteConfigs(explicitPath string) (*config.File, error) {
	configPath := config.FindConfigFile(explicitPath)

	if configPath == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicitPath)
		}
		return &config.File{Sites: make(map[string]config.SiteConfig)}, nil
	}

	siteConfigs, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return siteConfigs, nil
}

// uniqueTargets drops repeated domains, keeping the first occurrence.
func uniqueTargets(args []string) []string {
	seen := make(map[string]struct{}, len(args))
	targets := make([]string, 0, len(args))
	for _, arg := range args {
		if _, ok := seen[arg]; ok {
			continue
		}
		seen[arg] = struct{}{}
		targets = append(targets, arg)
	}
	return targets
}

// auditRun holds the state of one invocation of the audit command.
type auditRun struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer

	// progressOut receives progress bars; nil hides them.
	progressOut io.Writer
	quiet       bool

	db *database.AuditDB

	// mu serializes report output and database writes of concurrent audits.
	mu     sync.Mutex
	writer report.Writer
}

// execute audits every target and writes the reports.
func (r *auditRun) execute(ctx context.Context) error {
	cfg := r.cfg

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		r.db = db
		r.logger.Debug("database opened", "path", db.Path())
	}

	output, closeOutput, err := openReportOutput(cfg.ReportFile, r.stdout)
	if err != nil {
		return err
	}
	defer closeOutput()
	r.writer = newReportWriter(cfg, output, r.stdout, r.quiet)

	progress := newProgress(r.progressOut)
	recorders := make(map[string]*pageRecorder, len(cfg.Targets))
	for _, target := range cfg.Targets {
		recorders[target] = &pageRecorder{}
	}

	factory := func(domain string) (*auditor.Auditor, int) {
		site := cfg.Site(domain)
		a := newSiteAuditor(cfg, site, r.logger,
			&progressObserver{progress: progress},
			recorders[domain],
		)
		return a, site.MaxPages
	}

	b := auditor.NewBatchAuditor(nil,
		auditor.WithSiteFactory(factory),
		auditor.WithConcurrency(cfg.BatchSize),
		auditor.WithBatchLogger(r.logger),
	)

	startTime := time.Now()
	var failed int
	batchErr := b.AuditBatchWithCallback(ctx, cfg.Targets, cfg.MaxPages, func(res auditor.BatchResult, _ int) {
		r.mu.Lock()
		defer r.mu.Unlock()

		if res.Err != nil {
			failed++
			fmt.Fprintf(r.stderr, "Audit error for %s: %v\n", res.Domain, res.Err)
			return
		}
		r.handleResult(ctx, res.Result, recorders[res.Domain].Records())
	})
	progress.Wait()

	r.logger.Info("audit finished",
		"targets", len(cfg.Targets),
		"failed", failed,
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	if batchErr != nil {
		return batchErr
	}
	if failed == len(cfg.Targets) {
		return errors.New("all audits failed")
	}
	return nil
}

// handleResult writes the report of one audit and stores it.
// The caller holds r.mu.
func (r *auditRun) handleResult(ctx context.Context, result *model.AuditResult, pages []database.PageRecord) {
	if _, err := r.writer.Write(result); err != nil {
		r.logger.Error("report failed", "domain", result.Domain, "error", err)
	}

	if r.db == nil {
		return
	}
	if err := saveAudit(ctx, r.db, result, pages); err != nil {
		r.logger.Error("failed to save audit", "domain", result.Domain, "error", err)
		return
	}
	r.logger.Info("audit saved to database", "domain", result.Domain, "id", result.ID)
}

// saveAudit stores the result and its crawled pages.
func saveAudit(ctx context.Context, db *database.AuditDB, result *model.AuditResult, pages []database.PageRecord) error {
	id, err := db.SaveAudit(ctx, result)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return nil
	}
	return db.SavePages(ctx, id, pages)
}

// newSiteAuditor builds an Auditor configured for one site.
func newSiteAuditor(cfg *config.Config, site config.SiteConfig, logger *slog.Logger, observers ...auditor.Observer) *auditor.Auditor {
	f := fetcher.New(
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithUserAgent(site.UserAgent),
		fetcher.WithHeaders(site.Headers),
		fetcher.WithCookie(site.Cookie),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithLogger(logger),
	)

	opts := []auditor.Option{
		auditor.WithFetcher(f),
		auditor.WithDetector(detector.New(detector.WithSlowThreshold(cfg.SlowThreshold))),
		auditor.WithMaxDepth(site.Depth),
		auditor.WithIgnorePatterns(site.IgnorePatterns),
		auditor.WithFollowPatterns(site.FollowPatterns),
		auditor.WithScheme(cfg.Scheme),
		auditor.WithLogger(logger),
	}
	if site.SkipQueryURLs != nil {
		opts = append(opts, auditor.WithSkipQueryURLs(*site.SkipQueryURLs))
	}
	if site.RespectRobots != nil {
		opts = append(opts, auditor.WithRespectRobots(*site.RespectRobots))
	}
	for _, o := range observers {
		opts = append(opts, auditor.WithObserver(o))
	}

	return auditor.New(opts...)
}

// openReportOutput opens the report file, or returns stdout when path is empty.
func openReportOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil //nolint:errcheck // written data is already flushed by Write
}

// newReportWriter selects the report format. When the report goes to a
// file, the text summary is also printed unless quiet is set.
func newReportWriter(cfg *config.Config, output, stdout io.Writer, quiet bool) report.Writer {
	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	case cfg.TableReport:
		w = report.NewTableWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if cfg.ReportFile == "" || quiet {
		return w
	}
	return report.NewMultiWriter(w, report.NewSimpleWriter(stdout))
}

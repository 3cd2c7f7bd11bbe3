package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/database"
	seolog "github.com/nao1215/seoaudit/internal/log"
	"github.com/nao1215/seoaudit/internal/metrics"
	"github.com/nao1215/seoaudit/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the audit HTTP API",
		Long: `Serve runs an HTTP API that audits sites on request.

Endpoints:
  POST /api/audit-site              {"domain": "example.com", "max_pages": 50}
  GET  /api/audits                  audited domains
  GET  /api/audits/:domain          latest stored audit
  GET  /api/audits/:domain/history  stored audits, newest first
  GET  /api/audits/:domain/compare  latest two audits compared
  GET  /health                      liveness
  GET  /metrics                     Prometheus metrics

Cookies and headers of the configuration file are not used by the API,
since requests may name any domain.

Examples:
  # Listen on port 8080
  seoaudit serve

  # Listen on localhost only and log JSON
  seoaudit serve --listen 127.0.0.1:9000 --log-json`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"Address to listen on")
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Page limit used when a request omits max_pages")
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
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (only the defaults section is used)")
	cmd.Flags().Bool("no-save", false,
		"Do not store results; disables the /api/audits routes")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateOptions(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return err
	}
	logger := seolog.NewServerLogger(cmd.ErrOrStderr(), cfg.Verbose, logJSON)
	slog.SetDefault(logger)

	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	site := cfg.Site("")
	// Requests may name any domain, so site credentials stay out of the API.
	site.Cookie = ""
	site.Headers = nil

	opts := []server.Option{
		server.WithAddress(cfg.ListenAddress),
		server.WithGatherer(reg),
		server.WithLogger(logger),
		server.WithVersion(getVersion()),
		server.WithDefaultMaxPages(site.MaxPages),
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		opts = append(opts, server.WithStore(db))
		logger.Info("database opened", "path", db.Path())
	}

	srv := server.New(newSiteAuditor(cfg, site, logger, collector), opts...)

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", srv.Addr())
	return srv.Run(ctx)
}

// buildServeConfig creates a Config from the serve command flags.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	flags := cmd.Flags()

	if cfg.ListenAddress, err = flags.GetString("listen"); err != nil {
		return nil, err
	}
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
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
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

	return cfg, nil
}

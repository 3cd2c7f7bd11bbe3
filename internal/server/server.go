package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/seoaudit/internal/auditor"
	"github.com/nao1215/seoaudit/internal/metrics"
	"github.com/nao1215/seoaudit/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Server timeouts. The write timeout covers a full audit of the largest
// allowed site.
const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 10 * time.Minute
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 15 * time.Second
)

// SiteAuditor runs audits. *auditor.Auditor implements it.
type SiteAuditor interface {
	AuditSite(ctx context.Context, domain string, maxPages int) (*model.AuditResult, error)
}

// Store persists audit results. *database.AuditDB implements it.
type Store interface {
	SaveAudit(ctx context.Context, result *model.AuditResult) (string, error)
	LatestAudit(ctx context.Context, domain string) (*model.AuditResult, error)
	RecentAudits(ctx context.Context, domain string, limit int) ([]*model.AuditResult, error)
	AuditHistory(ctx context.Context, domain string) ([]model.AuditSnapshot, error)
	ListDomains(ctx context.Context) ([]string, error)
}

// Server is the HTTP API server.
type Server struct {
	router          *gin.Engine
	httpServer      *http.Server
	auditor         SiteAuditor
	store           Store
	gatherer        prometheus.Gatherer
	logger          *slog.Logger
	version         string
	defaultMaxPages int
	startedAt       time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables persistence and the /api/audits routes.
func WithStore(store Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithAddress sets the listen address, e.g. ":8080".
func WithAddress(addr string) Option {
	return func(s *Server) {
		s.httpServer.Addr = addr
	}
}

// WithDefaultMaxPages sets the page limit used when a request omits max_pages.
func WithDefaultMaxPages(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.defaultMaxPages = n
		}
	}
}

// New creates a Server that runs audits with a.
func New(a SiteAuditor, opts ...Option) *Server {
	s := &Server{
		auditor:         a,
		logger:          slog.Default(),
		version:         "dev",
		defaultMaxPages: auditor.DefaultMaxPages,
		startedAt:       time.Now(),
		httpServer: &http.Server{
			Addr:              ":8080",
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = gin.New()
	s.router.Use(recoveryMiddleware(s.logger), loggerMiddleware(s.logger))
	s.setupRoutes()
	s.httpServer.Handler = s.router

	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.httpServer.Addr, "version", s.version)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return <-errCh
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)
	s.router.HEAD("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	s.router.GET("/metrics", gin.WrapH(metrics.Handler(s.gatherer)))

	api := s.router.Group("/api")
	api.POST("/audit-site", s.auditSite)

	audits := api.Group("/audits", s.requireStore)
	audits.GET("", s.listDomains)
	audits.GET("/:domain", s.latestAudit)
	audits.GET("/:domain/history", s.auditHistory)
	audits.GET("/:domain/compare", s.compareAudits)
}

// recoveryMiddleware turns panics into 500 responses.
func recoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// loggerMiddleware logs one line per request.
func loggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			logger.Error("HTTP request with errors", append(attrs, "errors", c.Errors.String())...)
			return
		}
		logger.Info("HTTP request", attrs...)
	}
}

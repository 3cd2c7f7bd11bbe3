package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/seoaudit/internal/auditor"
	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/model"
)

// AuditRequest is the body of POST /api/audit-site.
type AuditRequest struct {
	Domain   string `json:"domain" binding:"required"`
	MaxPages int    `json:"max_pages"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// auditSite runs an audit and answers with the audit result, which
// includes the action plan.
func (s *Server) auditSite(c *gin.Context) {
	var req AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MaxPages == 0 {
		req.MaxPages = s.defaultMaxPages
	}

	result, err := s.auditor.AuditSite(c.Request.Context(), req.Domain, req.MaxPages)
	if err != nil {
		_ = c.Error(err)
		c.JSON(auditErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	if s.store != nil {
		if _, err := s.store.SaveAudit(c.Request.Context(), result); err != nil {
			// The audit itself succeeded; only history is affected.
			s.logger.Error("failed to save audit", "domain", result.Domain, "error", err)
		}
	}

	c.JSON(http.StatusOK, result)
}

// auditErrorStatus maps audit errors to HTTP status codes.
func auditErrorStatus(err error) int {
	switch {
	case errors.Is(err, auditor.ErrInvalidDomain), errors.Is(err, auditor.ErrInvalidMaxPages):
		return http.StatusBadRequest
	case errors.Is(err, auditor.ErrSeedUnreachable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// requireStore answers 503 when persistence is disabled.
func (s *Server) requireStore(c *gin.Context) {
	if s.store == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "audit history is disabled"})
		return
	}
	c.Next()
}

func (s *Server) listDomains(c *gin.Context) {
	domains, err := s.store.ListDomains(c.Request.Context())
	if err != nil {
		s.storeError(c, err)
		return
	}
	if domains == nil {
		domains = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"domains": domains})
}

func (s *Server) latestAudit(c *gin.Context) {
	result, err := s.store.LatestAudit(c.Request.Context(), c.Param("domain"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) auditHistory(c *gin.Context) {
	domain := c.Param("domain")
	history, err := s.store.AuditHistory(c.Request.Context(), domain)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if history == nil {
		history = []model.AuditSnapshot{}
	}
	c.JSON(http.StatusOK, gin.H{"domain": domain, "audits": history})
}

func (s *Server) compareAudits(c *gin.Context) {
	domain := c.Param("domain")
	recent, err := s.store.RecentAudits(c.Request.Context(), domain, 2)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if len(recent) < 2 {
		c.JSON(http.StatusNotFound, gin.H{"error": "at least two audits are needed for a comparison"})
		return
	}
	c.JSON(http.StatusOK, model.Compare(recent[1], recent[0]))
}

// storeError answers 404 for unknown audits and 500 otherwise.
func (s *Server) storeError(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, database.ErrAuditNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read audit history"})
}

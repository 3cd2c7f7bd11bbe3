// Package server provides the HTTP API of seoaudit.
//
// Routes:
//
//	POST /api/audit-site                 audit a domain, body {"domain": "...", "max_pages": 50}
//	GET  /api/audits                     list audited domains
//	GET  /api/audits/:domain             latest stored audit of a domain
//	GET  /api/audits/:domain/history     stored audit summaries, newest first
//	GET  /api/audits/:domain/compare     difference between the two latest audits
//	GET  /health                         liveness check
//	GET  /metrics                        Prometheus metrics
//
// The /api/audits routes need a Store; without one they answer 503.
package server

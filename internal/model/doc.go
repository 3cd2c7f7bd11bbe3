// Package model defines the core data structures used throughout seoaudit.
//
// This package contains the following main types:
//   - CrawlTarget: A URL waiting in the crawl frontier together with its depth
//   - PageResult: A fetched and parsed page, the input of issue detection
//   - Issue: A detected technical SEO problem, typed and severity-ranked
//   - AuditResult: The final output of one audit run
//
// Types live in their own package so that fetcher, parser, detector,
// auditor and report can share them without import cycles.
//
// The models are serializable to JSON for report output, the HTTP API
// and database storage.
package model

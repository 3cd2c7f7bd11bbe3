// Package database provides SQLite-based storage for seoaudit.
//
// AuditDB stores:
//   - Audit results as JSON, with their severity counts in columns so that
//     history listings do not need to decode every result
//   - Per-page crawl records of each audit
//
// The driver is modernc.org/sqlite, a CGO-free implementation, so the
// history is a single file and the binary cross-compiles.
package database

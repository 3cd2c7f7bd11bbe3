// Package metrics exports Prometheus metrics about audits.
//
// Collector implements auditor.Observer, so attaching it to an Auditor with
// auditor.WithObserver is enough to record crawl progress, fetch latencies
// and detected issues. The HTTP server exposes the registry on /metrics.
package metrics

// Package auditor drives a site audit.
//
// An Auditor crawls a site breadth-first starting from a seed URL. Each
// dequeued URL is fetched, parsed and passed through the detector, and
// the resulting issues are merged by type into a single AuditResult:
//
//	frontier -> fetcher -> parser -> detector -> merge -> enqueue links
//
// The loop stops when the frontier is empty or max pages URLs were
// dequeued. All crawl state lives in a CrawlSession created per run, so a
// single Auditor can run any number of audits, also concurrently.
//
// BatchAuditor audits several independent sites in parallel with a
// concurrency limit. Each site is still crawled sequentially.
package auditor

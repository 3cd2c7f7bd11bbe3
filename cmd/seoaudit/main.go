// Package main provides the entry point for the seoaudit CLI.
//
// seoaudit is a technical-SEO site auditor. It crawls a site breadth-first,
// checks every page against a fixed rule set and prints a prioritized
// action plan.
//
// Usage:
//
//	seoaudit audit <domain>
//	seoaudit serve --listen :8080
//
// See --help for all available options.
package main

func main() {
	Execute()
}

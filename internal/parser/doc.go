// Package parser extracts SEO-relevant content from HTML pages.
//
// The parser builds a DOM with golang.org/x/net/html, which tolerates the
// malformed markup common on the web, and queries it with goquery. It
// extracts the title, the meta description, h1-h6 headings, <a href> links
// resolved to absolute URLs and <img> elements with their alt attributes.
//
// Parsing never fails. Fields that cannot be found are left absent, and
// the issue detector reports them.
//
// No JavaScript is executed; only links present in the static markup are
// discovered.
package parser

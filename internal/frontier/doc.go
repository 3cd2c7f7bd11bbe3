// Package frontier provides the crawl frontier of an audit.
//
// The frontier is a first-in-first-out queue of discovered but not yet
// visited URLs, restricted to the host of the seed URL. It owns both the
// pending queue and the visited set, and keeps them disjoint: Dequeue moves
// a URL from pending to visited, and Enqueue refuses URLs that are in either.
//
// URLs are normalized before comparison (lowercase scheme and host, empty
// path becomes "/", fragment removed). A Bloom filter sits in front of the
// exact sets so that the common "never seen" case needs no map lookups.
//
// Additional filters skip static assets, optionally URLs with a query
// string, URLs outside glob follow patterns or inside ignore patterns, and
// URLs deeper than a maximum depth.
//
// A Frontier is not safe for concurrent use. It belongs to one crawl session.
package frontier

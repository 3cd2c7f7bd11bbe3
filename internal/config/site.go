package config

import "strings"

// SiteConfig holds site-specific configuration for a single audited domain.
// This allows customizing crawl behavior per site.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the User-Agent header for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxPages overrides the global page limit for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global CrawlDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// IgnorePatterns are URL path patterns to skip during crawling.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path patterns to follow during crawling.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`

	// SkipQueryURLs skips URLs with a query string. Nil means unset.
	SkipQueryURLs *bool `yaml:"skipQueryURLs,omitempty"`

	// RespectRobots honors robots.txt Disallow rules. Nil means unset.
	RespectRobots *bool `yaml:"respectRobots,omitempty"`
}

// File represents the structure of the .seoaudit configuration file.
type File struct {
	// Sites maps domains to their site-specific configurations.
	// Keys are hostnames without the scheme (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to all sites unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a domain, merged over the defaults.
// The lookup ignores case, a scheme prefix and a trailing slash.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	if cf == nil {
		return SiteConfig{}
	}

	key := strings.ToLower(domain)
	for _, prefix := range []string{"http://", "https://"} {
		key = strings.TrimPrefix(key, prefix)
	}
	key = strings.TrimSuffix(key, "/")

	for name, site := range cf.Sites {
		if strings.EqualFold(name, key) {
			return mergeSiteConfig(cf.Defaults, site)
		}
	}
	return cf.Defaults
}

// mergeSiteConfig overlays the non-zero values of override onto defaults.
func mergeSiteConfig(defaults, override SiteConfig) SiteConfig {
	result := defaults

	if override.Cookie != "" {
		result.Cookie = override.Cookie
	}
	if override.UserAgent != "" {
		result.UserAgent = override.UserAgent
	}
	if override.MaxPages != 0 {
		result.MaxPages = override.MaxPages
	}
	if override.Depth != 0 {
		result.Depth = override.Depth
	}
	if len(override.Headers) > 0 {
		headers := make(map[string]string, len(defaults.Headers)+len(override.Headers))
		for k, v := range defaults.Headers {
			headers[k] = v
		}
		for k, v := range override.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}
	if len(override.IgnorePatterns) > 0 {
		result.IgnorePatterns = override.IgnorePatterns
	}
	if len(override.FollowPatterns) > 0 {
		result.FollowPatterns = override.FollowPatterns
	}
	if override.SkipQueryURLs != nil {
		result.SkipQueryURLs = override.SkipQueryURLs
	}
	if override.RespectRobots != nil {
		result.RespectRobots = override.RespectRobots
	}

	return result
}

// Overrides holds settings given explicitly on the command line.
// Nil fields were not given and leave the file values alone.
type Overrides struct {
	MaxPages      *int
	Depth         *int
	SkipQueryURLs *bool
	RespectRobots *bool
}

// ApplyOverrides makes explicit command-line settings win over the
// defaults and every site entry of the file.
func (cf *File) ApplyOverrides(o Overrides) {
	if cf == nil {
		return
	}

	cf.Defaults = o.apply(cf.Defaults)
	for name, site := range cf.Sites {
		cf.Sites[name] = o.apply(site)
	}
}

func (o Overrides) apply(site SiteConfig) SiteConfig {
	if o.MaxPages != nil {
		site.MaxPages = *o.MaxPages
	}
	if o.Depth != nil {
		// Zero means unset in a site entry, so an explicit unlimited
		// depth resolves to the global value, which holds the flag.
		site.Depth = *o.Depth
	}
	if o.SkipQueryURLs != nil {
		skip := *o.SkipQueryURLs
		site.SkipQueryURLs = &skip
	}
	if o.RespectRobots != nil {
		respect := *o.RespectRobots
		site.RespectRobots = &respect
	}
	return site
}

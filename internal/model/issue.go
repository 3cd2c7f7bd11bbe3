package model

import (
	"fmt"
	"slices"
)

// IssueType identifies the rule that produced an issue.
//
// IssueType is a closed set. Every value has an entry in issueCatalog,
// which is the single source of truth for its severity and wording.
type IssueType int

const (
	// IssueMissingMetaDescription is reported when a page has no meta description.
	IssueMissingMetaDescription IssueType = iota + 1

	// IssueMissingAltTags is reported when at least one image lacks alt text.
	IssueMissingAltTags

	// IssueSlowPageSpeed is reported when a response took longer than the threshold.
	IssueSlowPageSpeed

	// IssueBrokenLinks is reported when a discovered URL could not be fetched.
	IssueBrokenLinks

	// IssueMissingTitle is reported when a page has no <title>.
	IssueMissingTitle

	// IssueShortTitle is reported when a title is shorter than MinTitleLength.
	IssueShortTitle

	// IssueLongTitle is reported when a title is longer than MaxTitleLength.
	IssueLongTitle

	// IssueShortMetaDescription is reported when a meta description is shorter
	// than MinMetaDescriptionLength.
	IssueShortMetaDescription

	// IssueLongMetaDescription is reported when a meta description is longer
	// than MaxMetaDescriptionLength.
	IssueLongMetaDescription

	// IssueMissingH1 is reported when a page has no h1 heading.
	IssueMissingH1

	// IssueMultipleH1 is reported when a page has more than one h1 heading.
	IssueMultipleH1

	// IssueLargePageSize is reported when a response body exceeds MaxPageSize.
	IssueLargePageSize
)

// Thresholds used by content rules.
const (
	MinTitleLength           = 10
	MaxTitleLength           = 70
	MinMetaDescriptionLength = 50
	MaxMetaDescriptionLength = 160

	// MaxPageSize is the body size in bytes above which a page is considered large.
	MaxPageSize = 1024 * 1024
)

// IssueInfo contains metadata about an issue type.
type IssueInfo struct {
	// Name is the snake_case wire name of the issue type.
	Name string

	// Severity is the fixed severity of every issue of this type.
	Severity Severity

	// Title is a short human-readable label.
	Title string

	// Description explains what was detected.
	Description string

	// Recommendation tells the site owner how to fix it.
	Recommendation string
}

// issueCatalog maps issue types to their metadata.
var issueCatalog = map[IssueType]IssueInfo{
	IssueBrokenLinks: {
		Name:           "broken_links",
		Severity:       SeverityHigh,
		Title:          "Broken links",
		Description:    "Links point to pages that return an error status or cannot be fetched.",
		Recommendation: "Fix or remove the broken links, or redirect the missing URLs to live pages.",
	},
	IssueSlowPageSpeed: {
		Name:           "slow_page_speed",
		Severity:       SeverityHigh,
		Title:          "Slow page speed",
		Description:    "Pages take too long to respond.",
		Recommendation: "Optimize server response time, enable caching and compress assets.",
	},
	IssueMissingTitle: {
		Name:           "missing_title",
		Severity:       SeverityHigh,
		Title:          "Missing title tags",
		Description:    "Pages have no <title> element.",
		Recommendation: "Add a unique, descriptive <title> of 50-60 characters to every page.",
	},
	IssueMissingMetaDescription: {
		Name:           "missing_meta_description",
		Severity:       SeverityMedium,
		Title:          "Missing meta descriptions",
		Description:    "Pages have no meta description.",
		Recommendation: "Write a compelling meta description of 150-160 characters for each page.",
	},
	IssueShortTitle: {
		Name:           "short_title",
		Severity:       SeverityMedium,
		Title:          "Short title tags",
		Description:    fmt.Sprintf("Page titles are shorter than %d characters.", MinTitleLength),
		Recommendation: "Expand the titles with the primary keyword and a clear value proposition.",
	},
	IssueLongTitle: {
		Name:           "long_title",
		Severity:       SeverityMedium,
		Title:          "Long title tags",
		Description:    fmt.Sprintf("Page titles are longer than %d characters and will be truncated in search results.", MaxTitleLength),
		Recommendation: "Shorten the titles so the important words appear within the first 60 characters.",
	},
	IssueMissingH1: {
		Name:           "missing_h1",
		Severity:       SeverityMedium,
		Title:          "Missing H1 headings",
		Description:    "Pages have no h1 heading.",
		Recommendation: "Add exactly one h1 heading that describes the main topic of the page.",
	},
	IssueLargePageSize: {
		Name:           "large_page_size",
		Severity:       SeverityMedium,
		Title:          "Large page size",
		Description:    "Page bodies are larger than 1 MB.",
		Recommendation: "Reduce page weight by removing unused markup and inlined resources.",
	},
	IssueMissingAltTags: {
		Name:           "missing_alt_tags",
		Severity:       SeverityLow,
		Title:          "Missing alt text",
		Description:    "Images have no alt text.",
		Recommendation: "Describe every meaningful image with an alt attribute.",
	},
	IssueShortMetaDescription: {
		Name:           "short_meta_description",
		Severity:       SeverityLow,
		Title:          "Short meta descriptions",
		Description:    fmt.Sprintf("Meta descriptions are shorter than %d characters.", MinMetaDescriptionLength),
		Recommendation: "Expand the meta descriptions to summarize the page content.",
	},
	IssueLongMetaDescription: {
		Name:           "long_meta_description",
		Severity:       SeverityLow,
		Title:          "Long meta descriptions",
		Description:    fmt.Sprintf("Meta descriptions are longer than %d characters and will be truncated.", MaxMetaDescriptionLength),
		Recommendation: "Trim the meta descriptions to 150-160 characters.",
	},
	IssueMultipleH1: {
		Name:           "multiple_h1",
		Severity:       SeverityLow,
		Title:          "Multiple H1 headings",
		Description:    "Pages have more than one h1 heading.",
		Recommendation: "Keep a single h1 per page and demote the others to h2.",
	},
}

// IssueTypes returns all known issue types in declaration order.
func IssueTypes() []IssueType {
	types := make([]IssueType, 0, len(issueCatalog))
	for t := range issueCatalog {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Info returns the catalog entry for the issue type.
// Unknown types get an entry with the name "unknown" and low severity.
func (t IssueType) Info() IssueInfo {
	if info, ok := issueCatalog[t]; ok {
		return info
	}
	return IssueInfo{
		Name:     "unknown",
		Severity: SeverityLow,
		Title:    "Unknown issue",
	}
}

// Severity returns the fixed severity of the issue type.
func (t IssueType) Severity() Severity {
	return t.Info().Severity
}

// String returns the snake_case wire name of the issue type.
func (t IssueType) String() string {
	return t.Info().Name
}

// ParseIssueType converts a wire name into an IssueType.
func ParseIssueType(name string) (IssueType, error) {
	for t, info := range issueCatalog {
		if info.Name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown issue type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t IssueType) MarshalText() ([]byte, error) {
	if _, ok := issueCatalog[t]; !ok {
		return nil, fmt.Errorf("unknown issue type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *IssueType) UnmarshalText(text []byte) error {
	parsed, err := ParseIssueType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Issue is a detected technical SEO problem.
//
// The detector emits one Issue per rule and page. The aggregator merges
// issues of the same type into a single entry whose AffectedPages lists
// every page that triggered the rule.
type Issue struct {
	// Type is the rule that produced the issue.
	Type IssueType `json:"type"`

	// Severity is always Type.Severity(); it is stored for serialization.
	Severity Severity `json:"severity"`

	// AffectedPages lists the URLs that triggered the rule.
	AffectedPages []string `json:"affected_pages"`

	// Description explains what was detected.
	Description string `json:"description"`
}

// NewIssue creates an issue of the given type affecting a single page.
// The severity and description come from the catalog.
func NewIssue(t IssueType, page string) Issue {
	info := t.Info()
	return Issue{
		Type:          t,
		Severity:      info.Severity,
		AffectedPages: []string{page},
		Description:   info.Description,
	}
}

// Recommendation is a prioritized suggestion derived from an issue.
type Recommendation struct {
	// Priority mirrors the severity of the underlying issue.
	Priority Severity `json:"priority"`

	// IssueType is the issue the recommendation addresses.
	IssueType IssueType `json:"issue_type"`

	// Title is a short label for the recommendation.
	Title string `json:"title"`

	// Description tells the site owner what to do.
	Description string `json:"description"`

	// PageCount is the number of pages the recommendation applies to.
	PageCount int `json:"page_count"`
}

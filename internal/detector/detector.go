package detector

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nao1215/seoaudit/internal/model"
)

// DefaultSlowThreshold is the response time above which a page is slow.
const DefaultSlowThreshold = 2 * time.Second

// Rule inspects a successfully fetched page and reports whether the issue applies.
type Rule struct {
	// Type is the issue type emitted when Check returns true.
	Type model.IssueType

	// Check returns true if the page triggers the rule.
	Check func(page *model.PageResult) bool
}

// contentRules run on successfully fetched HTML pages, in emission order.
var contentRules = []Rule{
	{Type: model.IssueMissingTitle, Check: missingTitle},
	{Type: model.IssueShortTitle, Check: shortTitle},
	{Type: model.IssueLongTitle, Check: longTitle},
	{Type: model.IssueMissingMetaDescription, Check: missingMetaDescription},
	{Type: model.IssueShortMetaDescription, Check: shortMetaDescription},
	{Type: model.IssueLongMetaDescription, Check: longMetaDescription},
	{Type: model.IssueMissingH1, Check: func(p *model.PageResult) bool { return p.HeadingCount(1) == 0 }},
	{Type: model.IssueMultipleH1, Check: func(p *model.PageResult) bool { return p.HeadingCount(1) > 1 }},
	{Type: model.IssueMissingAltTags, Check: missingAltTags},
}

// Detector evaluates the rule set against pages.
// A Detector holds no per-audit state and is safe for concurrent use.
type Detector struct {
	slowThreshold time.Duration
	maxPageSize   int64
	disabled      map[model.IssueType]struct{}
}

// Option configures a Detector.
type Option func(*Detector)

// WithSlowThreshold sets the response time above which a page is reported as slow.
func WithSlowThreshold(d time.Duration) Option {
	return func(det *Detector) {
		if d > 0 {
			det.slowThreshold = d
		}
	}
}

// WithMaxPageSize sets the body size in bytes above which a page is reported as large.
func WithMaxPageSize(n int64) Option {
	return func(det *Detector) {
		if n > 0 {
			det.maxPageSize = n
		}
	}
}

// WithDisabledRules turns off the given issue types.
func WithDisabledRules(types ...model.IssueType) Option {
	return func(det *Detector) {
		for _, t := range types {
			det.disabled[t] = struct{}{}
		}
	}
}

// New creates a Detector with the default thresholds.
func New(opts ...Option) *Detector {
	d := &Detector{
		slowThreshold: DefaultSlowThreshold,
		maxPageSize:   model.MaxPageSize,
		disabled:      make(map[model.IssueType]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SlowThreshold returns the configured slow page threshold.
func (d *Detector) SlowThreshold() time.Duration {
	return d.slowThreshold
}

// Detect returns the issues found on page, each affecting only page.URL.
// The order is stable: broken_links, slow_page_speed, large_page_size,
// then the content rules.
func (d *Detector) Detect(page *model.PageResult) []model.Issue {
	if page == nil {
		return nil
	}

	var issues []model.Issue
	emit := func(t model.IssueType) {
		if _, off := d.disabled[t]; off {
			return
		}
		issues = append(issues, model.NewIssue(t, page.URL))
	}

	if page.Failed() {
		emit(model.IssueBrokenLinks)
		if page.Elapsed > d.slowThreshold {
			emit(model.IssueSlowPageSpeed)
		}
		return issues
	}

	if page.Elapsed > d.slowThreshold {
		emit(model.IssueSlowPageSpeed)
	}
	if page.ContentLength > d.maxPageSize {
		emit(model.IssueLargePageSize)
	}

	if !page.IsHTML {
		return issues
	}

	for _, rule := range contentRules {
		if rule.Check(page) {
			emit(rule.Type)
		}
	}

	return issues
}

func missingTitle(p *model.PageResult) bool {
	return model.IsBlank(p.Title)
}

func shortTitle(p *model.PageResult) bool {
	if model.IsBlank(p.Title) {
		return false
	}
	return runeLen(*p.Title) < model.MinTitleLength
}

func longTitle(p *model.PageResult) bool {
	if model.IsBlank(p.Title) {
		return false
	}
	return runeLen(*p.Title) > model.MaxTitleLength
}

func missingMetaDescription(p *model.PageResult) bool {
	return model.IsBlank(p.MetaDescription)
}

func shortMetaDescription(p *model.PageResult) bool {
	if model.IsBlank(p.MetaDescription) {
		return false
	}
	return runeLen(*p.MetaDescription) < model.MinMetaDescriptionLength
}

func longMetaDescription(p *model.PageResult) bool {
	if model.IsBlank(p.MetaDescription) {
		return false
	}
	return runeLen(*p.MetaDescription) > model.MaxMetaDescriptionLength
}

func missingAltTags(p *model.PageResult) bool {
	for _, img := range p.Images {
		if !img.HasAlt() {
			return true
		}
	}
	return false
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

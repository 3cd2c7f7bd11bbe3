package model

import (
	"fmt"
	"strings"
)

// Severity represents how urgently an SEO issue should be fixed.
//
// Severity is iota-based so that issues can be sorted by comparing values.
// The String() method provides the lowercase wire representation.
type Severity int

const (
	// SeverityLow indicates cosmetic issues with limited ranking impact.
	// Examples: images without alt text, overly long meta descriptions.
	SeverityLow Severity = iota

	// SeverityMedium indicates issues that weaken how search engines
	// present the page. Examples: missing meta description, missing h1.
	SeverityMedium

	// SeverityHigh indicates issues that directly hurt crawlability or
	// user experience. Examples: broken links, slow responses, missing title.
	SeverityHigh
)

// Severities lists all severities from most to least urgent.
// Reports and action plans iterate in this order.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// String returns the lowercase name of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a severity name into a Severity.
// Matching is case-insensitive.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SeverityCounts holds the number of issues per severity level.
type SeverityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Add increments the counter for the given severity.
func (c *SeverityCounts) Add(s Severity) {
	switch s {
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	case SeverityLow:
		c.Low++
	}
}

// Get returns the counter for the given severity.
func (c SeverityCounts) Get(s Severity) int {
	switch s {
	case SeverityHigh:
		return c.High
	case SeverityMedium:
		return c.Medium
	case SeverityLow:
		return c.Low
	default:
		return 0
	}
}

// Total returns the sum of all counters.
func (c SeverityCounts) Total() int {
	return c.High + c.Medium + c.Low
}

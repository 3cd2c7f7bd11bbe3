// Package config provides configuration structures and utilities for seoaudit.
// It defines the options for crawling audited sites, report generation, and
// the per-site settings loaded from the .seoaudit YAML file.
package config

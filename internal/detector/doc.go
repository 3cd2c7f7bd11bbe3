// Package detector applies the technical SEO rule set to fetched pages.
//
// Each rule is evaluated independently and produces at most one issue per
// page. Issues carry a single affected page; merging by type happens in
// the auditor.
//
// # Rules
//
//   - broken_links (high): the fetch failed or the status was >= 400
//   - slow_page_speed (high): the response took longer than the threshold
//   - missing_title (high): no <title> or a blank one
//   - missing_meta_description (medium): no description meta tag or a blank one
//   - short_title, long_title (medium): title length out of bounds
//   - missing_h1 (medium), multiple_h1 (low): h1 count is not exactly one
//   - large_page_size (medium): body larger than 1 MiB
//   - missing_alt_tags (low): at least one image without alt text
//   - short_meta_description, long_meta_description (low): description length out of bounds
//
// A failed page only yields broken_links, plus slow_page_speed when the
// failure still took longer than the threshold. Content rules run on HTML
// pages only.
package detector

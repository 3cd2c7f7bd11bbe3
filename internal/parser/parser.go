package parser

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/seoaudit/internal/model"
	"golang.org/x/net/html"
)

// Parser extracts page content relative to a base URL.
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	// Nil when the page URL could not be parsed; links are then kept only if absolute.
	baseURL *url.URL

	// rawURL is the page URL as given.
	rawURL string
}

// NewParser creates a Parser for a page fetched from baseURL.
func NewParser(baseURL string) *Parser {
	p := &Parser{rawURL: baseURL}
	if u, err := url.Parse(baseURL); err == nil {
		p.baseURL = u
	}
	return p
}

// Parse is a shorthand for NewParser(baseURL).Parse(content).
func Parse(content io.Reader, baseURL string) *model.PageResult {
	return NewParser(baseURL).Parse(content)
}

// Parse extracts content from an HTML document.
// The returned PageResult has URL and IsHTML set; fetch-related fields
// are left for the caller.
func (p *Parser) Parse(content io.Reader) *model.PageResult {
	page := &model.PageResult{
		URL:    p.rawURL,
		IsHTML: true,
	}

	root, err := html.Parse(content)
	if err != nil {
		return page
	}
	doc := goquery.NewDocumentFromNode(root)

	p.applyBase(doc)

	page.Title = extractTitle(doc)
	page.MetaDescription = extractMetaDescription(doc)
	page.Headings = extractHeadings(doc)
	page.Links = p.extractLinks(doc)
	page.Images = p.extractImages(doc)

	return page
}

// applyBase honours <base href> by resolving it against the page URL.
func (p *Parser) applyBase(doc *goquery.Document) {
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return
	}
	if p.baseURL != nil {
		u = p.baseURL.ResolveReference(u)
	}
	if u.IsAbs() {
		p.baseURL = u
	}
}

// extractTitle returns the text of the first <title>, or nil when there is none.
func extractTitle(doc *goquery.Document) *string {
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return nil
	}
	title := collapseSpace(sel.Text())
	return &title
}

// extractMetaDescription returns the content of the first description meta tag.
// A tag without a content attribute yields an empty string.
func extractMetaDescription(doc *goquery.Document) *string {
	var desc *string
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(name), "description") {
			return true
		}
		content, _ := s.Attr("content")
		content = strings.TrimSpace(content)
		desc = &content
		return false
	})
	return desc
}

// extractHeadings returns h1-h6 elements in document order.
func extractHeadings(doc *goquery.Document) []model.Heading {
	var headings []model.Heading
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		if len(name) != 2 {
			return
		}
		headings = append(headings, model.Heading{
			Level: int(name[1] - '0'),
			Text:  collapseSpace(s.Text()),
		})
	})
	return headings
}

// extractLinks returns unique absolute http(s) URLs in discovery order.
func (p *Parser) extractLinks(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link := p.resolveURL(href)
		if link == "" {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

// extractImages returns all <img> elements in document order.
func (p *Parser) extractImages(doc *goquery.Document) []model.Image {
	var images []model.Image

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if resolved := p.resolveURL(src); resolved != "" {
			src = resolved
		}

		img := model.Image{Src: src}
		if alt, ok := s.Attr("alt"); ok {
			img.Alt = &alt
		}
		images = append(images, img)
	})

	return images
}

// resolveURL resolves href against the base URL.
// It returns "" for links that are not crawlable pages: javascript:,
// mailto:, tel: and data: URLs, pure fragments and non-http(s) schemes.
// The fragment of the resolved URL is removed.
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if p.baseURL != nil {
		u = p.baseURL.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Host == "" {
		return ""
	}

	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// collapseSpace trims s and replaces runs of whitespace with a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

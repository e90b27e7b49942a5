package generator

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	headingPattern    = regexp.MustCompile(`(?is)<(h[1-6])[^>]*>(.*?)</h[1-6]\s*>`)
	paragraphPattern  = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	leadingHeading    = regexp.MustCompile(`(?is)^\s*<(h[1-3])[^>]*>(.*?)</h[1-3]\s*>\s*`)
	outboundAnchor    = regexp.MustCompile(`(?i)<a\s[^>]*href\s*=\s*["']https?://`)
)

// plainText strips markup from an HTML fragment. goquery handles entities and
// nesting; the regex fallback only fires on input goquery cannot read.
func plainText(html string) string {
	if !strings.Contains(html, "<") {
		return collapseWhitespace(html)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return collapseWhitespace(tagPattern.ReplaceAllString(html, " "))
	}
	return collapseWhitespace(doc.Text())
}

// firstParagraph returns the text of the first <p> block, or the first
// blank-line-delimited chunk when the content carries no paragraph tags.
func firstParagraph(html string) string {
	if m := paragraphPattern.FindStringSubmatch(html); m != nil {
		return plainText(m[1])
	}
	for _, chunk := range strings.Split(html, "\n\n") {
		if t := plainText(chunk); t != "" {
			return t
		}
	}
	return plainText(html)
}

// subheadings returns the text of every H2 and H3 in the fragment.
func subheadings(html string) []string {
	var out []string
	for _, m := range headingPattern.FindAllStringSubmatch(html, -1) {
		tag := strings.ToLower(m[1])
		if tag == "h2" || tag == "h3" {
			out = append(out, plainText(m[2]))
		}
	}
	return out
}

// hasOutboundLink reports whether the fragment contains an absolute
// http(s) anchor.
func hasOutboundLink(html string) bool {
	return outboundAnchor.MatchString(html)
}

func stripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// normalizeForCompare lowercases and collapses whitespace so headings and
// titles can be compared loosely.
func normalizeForCompare(s string) string {
	return strings.ToLower(collapseWhitespace(s))
}

// dropLeadingTitleHeading removes an opening H1-H3 whose text duplicates the
// title, which would otherwise render twice on publish.
func dropLeadingTitleHeading(content, title string) string {
	m := leadingHeading.FindStringSubmatch(content)
	if m == nil {
		return content
	}
	if normalizeForCompare(stripTags(m[2])) != normalizeForCompare(title) {
		return content
	}
	return strings.TrimLeft(content[len(m[0]):], " \t\n\r")
}

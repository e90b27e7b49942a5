package generator

import (
	"regexp"
	"strings"
)

var (
	boldTagPattern   = regexp.MustCompile(`(?i)</?\s*(?:b|strong)(?:\s[^>]*)?>`)
	anyTagPattern    = regexp.MustCompile(`(?i)</?\s*([a-z][a-z0-9]*)(?:\s[^>]*)?/?>`)
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// allowedTags is the content tag allow-list. Bold tags survive this filter
// but are removed beforehand: keyword emphasis is never kept.
var allowedTags = map[string]bool{
	"p": true, "br": true, "strong": true, "em": true, "i": true, "u": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "a": true, "img": true,
	"blockquote": true, "code": true, "pre": true,
}

// Sanitize normalizes a parsed record in place: markup is stripped where it
// does not belong, fields are trimmed to their limits, optional fields get
// their empty defaults and the slug is derived when absent. It never fails.
func Sanitize(rec *ContentRecord) {
	rec.Title = collapseWhitespace(stripTags(rec.Title))

	rec.Content = removeBoldTags(rec.Content)
	rec.Content = filterAllowedTags(rec.Content)
	rec.Content = strings.TrimSpace(rec.Content)

	rec.MetaDescription = truncateAtWord(collapseWhitespace(stripTags(rec.MetaDescription)), MetaDescriptionMaxLen)
	rec.Excerpt = truncateAtWord(collapseWhitespace(stripTags(rec.Excerpt)), ExcerptMaxLen)
	rec.FocusKeyword = collapseWhitespace(stripTags(rec.FocusKeyword))

	rec.SecondaryKeywords = dedupeTrimmed(rec.SecondaryKeywords)
	rec.Tags = dedupeTrimmed(rec.Tags)

	if rec.ImagePrompts == nil {
		rec.ImagePrompts = []ImagePrompt{}
	}
	if rec.InternalLinks == nil {
		rec.InternalLinks = []Link{}
	}
	if rec.OutboundLinks == nil {
		rec.OutboundLinks = []Link{}
	}

	if rec.Slug == "" {
		rec.Slug = Slugify(rec.Title)
	} else {
		rec.Slug = Slugify(rec.Slug)
	}
}

// removeBoldTags strips <b>/<strong> tags, attributes included, repeating
// until none remain so malformed nesting cannot smuggle one through.
func removeBoldTags(content string) string {
	for boldTagPattern.MatchString(content) {
		content = boldTagPattern.ReplaceAllString(content, "")
	}
	return content
}

// filterAllowedTags drops any tag outside the allow-list, keeping its inner
// text.
func filterAllowedTags(content string) string {
	return anyTagPattern.ReplaceAllStringFunc(content, func(tag string) string {
		m := anyTagPattern.FindStringSubmatch(tag)
		if m == nil {
			return ""
		}
		if allowedTags[strings.ToLower(m[1])] {
			return tag
		}
		return ""
	})
}

// truncateAtWord shortens s to at most limit characters, cutting at the last
// word boundary and appending an ellipsis.
func truncateAtWord(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := limit - 3 // room for the ellipsis
	if cut < 1 {
		cut = 1
	}
	truncated := string(runes[:cut])
	if idx := strings.LastIndex(truncated, " "); idx > 0 {
		truncated = truncated[:idx]
	}
	return strings.TrimRight(truncated, " ,;:.") + "..."
}

func dedupeTrimmed(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// Slugify derives a URL-safe slug from a title.
func Slugify(s string) string {
	s = strings.ToLower(stripTags(s))
	s = slugInvalidChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

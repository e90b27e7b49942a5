package generator

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ParseError reasons.
const (
	ReasonEmptyInput            = "empty_input"
	ReasonDecodeFailed          = "decode_failed"
	ReasonMissingRequiredFields = "missing_required_fields"
)

// ParseError signals that a provider response could not be turned into a
// ContentRecord. The orchestrator treats every kind as "this attempt failed"
// and moves on to the next provider.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "response parse failed: " + e.Reason
}

// Parse decodes raw provider output into a ContentRecord. Stages run in
// order and the first success wins: strict JSON decode, decode after repair,
// decode of the first balanced JSON span found in surrounding prose, and
// finally labeled-field extraction (TITLE:/CONTENT:/... lines) with markdown
// converted to HTML. A record without a title and content fails with
// missing_required_fields.
func Parse(raw string) (*ContentRecord, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ParseError{Reason: ReasonEmptyInput}
	}

	if rec, ok := decodeRecord(trimmed); ok {
		return finishRecord(rec)
	}
	if rec, ok := decodeRecord(Repair(trimmed)); ok {
		return finishRecord(rec)
	}
	if span := firstBalancedSpan(trimmed); span != "" {
		if rec, ok := decodeRecord(Repair(span)); ok {
			return finishRecord(rec)
		}
	}
	if rec := extractLabeled(trimmed); rec != nil {
		return finishRecord(rec)
	}

	return nil, &ParseError{Reason: ReasonDecodeFailed}
}

// finishRecord enforces the structural gate and normalizes a freshly decoded
// record.
func finishRecord(rec *ContentRecord) (*ContentRecord, error) {
	rec.Title = strings.TrimSpace(rec.Title)
	rec.Content = strings.TrimSpace(rec.Content)
	if rec.Title == "" || rec.Content == "" {
		return nil, &ParseError{Reason: ReasonMissingRequiredFields}
	}
	rec.Content = dropLeadingTitleHeading(rec.Content, rec.Title)
	return rec, nil
}

// Field aliases tolerated across providers. Models rarely agree on names.
var fieldAliases = map[string][]string{
	"title":              {"title", "heading", "post_title"},
	"meta_description":   {"meta_description", "meta_desc", "description", "meta"},
	"slug":               {"slug"},
	"content":            {"content", "body", "article", "html", "post_content"},
	"excerpt":            {"excerpt", "summary"},
	"focus_keyword":      {"focus_keyword", "keyword", "main_keyword"},
	"secondary_keywords": {"secondary_keywords", "keywords"},
	"tags":               {"tags"},
	"image_prompts":      {"image_prompts", "images"},
	"internal_links":     {"internal_links"},
	"outbound_links":     {"outbound_links", "external_links"},
}

func decodeRecord(s string) (*ContentRecord, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		// A top-level array: take its first object element.
		var arr []json.RawMessage
		if err := json.Unmarshal([]byte(s), &arr); err != nil || len(arr) == 0 {
			return nil, false
		}
		if err := json.Unmarshal(arr[0], &fields); err != nil {
			return nil, false
		}
	}

	// Lowercase the keys once so alias lookup is case-insensitive.
	lowered := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		lowered[strings.ToLower(k)] = v
	}
	pick := func(field string) (json.RawMessage, bool) {
		for _, alias := range fieldAliases[field] {
			if v, ok := lowered[alias]; ok {
				return v, true
			}
		}
		return nil, false
	}

	rec := &ContentRecord{}
	if v, ok := pick("title"); ok {
		rec.Title = asString(v)
	}
	if v, ok := pick("meta_description"); ok {
		rec.MetaDescription = asString(v)
	}
	if v, ok := pick("slug"); ok {
		rec.Slug = asString(v)
	}
	if v, ok := pick("content"); ok {
		rec.Content = asString(v)
	}
	if v, ok := pick("excerpt"); ok {
		rec.Excerpt = asString(v)
	}
	if v, ok := pick("focus_keyword"); ok {
		rec.FocusKeyword = asString(v)
	}
	if v, ok := pick("secondary_keywords"); ok {
		rec.SecondaryKeywords = asStringList(v)
	}
	if v, ok := pick("tags"); ok {
		rec.Tags = asStringList(v)
	}
	if v, ok := pick("image_prompts"); ok {
		rec.ImagePrompts = asImagePrompts(v)
	}
	if v, ok := pick("internal_links"); ok {
		rec.InternalLinks = asLinks(v)
	}
	if v, ok := pick("outbound_links"); ok {
		rec.OutboundLinks = asLinks(v)
	}
	return rec, true
}

func asString(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	// Tolerate a non-string scalar or nested value by using its raw text.
	return strings.Trim(strings.TrimSpace(string(v)), `"`)
}

// asStringList accepts a JSON array of strings or a comma-joined string.
func asStringList(v json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(v, &list); err == nil {
		return list
	}
	var joined string
	if err := json.Unmarshal(v, &joined); err == nil {
		var out []string
		for _, part := range strings.Split(joined, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

func asImagePrompts(v json.RawMessage) []ImagePrompt {
	var prompts []struct {
		Prompt      string `json:"prompt"`
		Description string `json:"description"`
		Alt         string `json:"alt"`
		AltText     string `json:"alt_text"`
	}
	if err := json.Unmarshal(v, &prompts); err == nil {
		out := make([]ImagePrompt, 0, len(prompts))
		for _, p := range prompts {
			ip := ImagePrompt{Prompt: p.Prompt, Alt: p.Alt}
			if ip.Prompt == "" {
				ip.Prompt = p.Description
			}
			if ip.Alt == "" {
				ip.Alt = p.AltText
			}
			if ip.Prompt != "" || ip.Alt != "" {
				out = append(out, ip)
			}
		}
		return out
	}
	// Bare strings become prompts without alt text.
	if list := asStringList(v); list != nil {
		out := make([]ImagePrompt, 0, len(list))
		for _, s := range list {
			out = append(out, ImagePrompt{Prompt: s})
		}
		return out
	}
	return nil
}

func asLinks(v json.RawMessage) []Link {
	var links []struct {
		URL    string `json:"url"`
		Href   string `json:"href"`
		Anchor string `json:"anchor"`
		Text   string `json:"text"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(v, &links); err != nil {
		return nil
	}
	out := make([]Link, 0, len(links))
	for _, l := range links {
		link := Link{URL: l.URL, Anchor: l.Anchor}
		if link.URL == "" {
			link.URL = l.Href
		}
		if link.Anchor == "" {
			link.Anchor = l.Text
		}
		if link.Anchor == "" {
			link.Anchor = l.Title
		}
		if link.URL != "" {
			out = append(out, link)
		}
	}
	return out
}

// firstBalancedSpan finds the first balanced {...} or [...] span using
// bracket-depth counting. Content may itself contain braces, so a naive
// regex cannot do this; the scan honors string literals and escapes.
func firstBalancedSpan(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	open := s[start]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	// Unbalanced to end of string: the repairer may still close it.
	return s[start:]
}

var labelPattern = regexp.MustCompile(`(?im)^\s*(TITLE|META_DESCRIPTION|FOCUS_KEYWORD|CONTENT)\s*:\s*`)

// extractLabeled assembles a minimal record from TITLE:/META_DESCRIPTION:/
// FOCUS_KEYWORD:/CONTENT: labels, each consuming text up to the next label
// or end of string. Returns nil when no label is present.
func extractLabeled(s string) *ContentRecord {
	locs := labelPattern.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return nil
	}

	rec := &ContentRecord{}
	for i, loc := range locs {
		label := strings.ToUpper(s[loc[2]:loc[3]])
		end := len(s)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		value := strings.TrimSpace(s[loc[1]:end])
		switch label {
		case "TITLE":
			rec.Title = stripTags(value)
		case "META_DESCRIPTION":
			rec.MetaDescription = value
		case "FOCUS_KEYWORD":
			rec.FocusKeyword = value
		case "CONTENT":
			rec.Content = recoveredContentToHTML(value)
		}
	}
	return rec
}

var markdown = goldmark.New(
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

var blockTagPattern = regexp.MustCompile(`(?i)<(p|h[1-6]|ul|ol|blockquote|pre)[\s>]`)

// recoveredContentToHTML converts markdown recovered from a plain-text
// response into HTML. Content that already carries block-level tags is
// passed through untouched; goldmark leaves embedded HTML alone either way.
func recoveredContentToHTML(content string) string {
	if blockTagPattern.MatchString(content) {
		return content
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return strings.TrimSpace(buf.String())
}

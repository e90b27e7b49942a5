package generator

import (
	"fmt"
	"regexp"
	"strings"
)

// KeywordHistory reports whether a focus keyword has already been used in a
// published article. It is the validator's only collaborator and must be
// safe for concurrent reads; implementations return false when the lookup
// itself fails.
type KeywordHistory interface {
	WasUsedBefore(keyword string) bool
}

// Validate evaluates the full SEO and readability rule set against a record.
// All checks run independently; the returned slice collects every violation
// as a human-readable message and is empty for a compliant record. The same
// record always yields the same list.
func Validate(rec *ContentRecord, history KeywordHistory) []string {
	usedBefore := false
	if rec.FocusKeyword != "" && history != nil {
		usedBefore = history.WasUsedBefore(rec.FocusKeyword)
	}
	return validateRecord(rec, usedBefore, DefaultRules())
}

func validateRecord(rec *ContentRecord, usedBefore bool, rules Rules) []string {
	var violations []string
	add := func(format string, args ...interface{}) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	// Required fields.
	required := []struct {
		name  string
		empty bool
	}{
		{"title", rec.Title == ""},
		{"meta_description", rec.MetaDescription == ""},
		{"slug", rec.Slug == ""},
		{"content", rec.Content == ""},
		{"excerpt", rec.Excerpt == ""},
		{"focus_keyword", rec.FocusKeyword == ""},
		{"image_prompts", len(rec.ImagePrompts) == 0},
		{"internal_links", len(rec.InternalLinks) == 0},
	}
	for _, f := range required {
		if f.empty {
			add("%s is missing", f.name)
		}
	}

	if n := len([]rune(rec.Title)); n > TitleMaxLen {
		add("title is %d characters, maximum is %d", n, TitleMaxLen)
	}
	if n := len([]rune(plainText(rec.MetaDescription))); n > MetaDescriptionMaxLen {
		add("meta description is %d characters, maximum is %d", n, MetaDescriptionMaxLen)
	}

	text := plainText(rec.Content)
	synonyms := rules.synonymsFor(rec)

	if kw := rec.FocusKeyword; kw != "" {
		if !hasKeywordPrefix(rec.Title, kw) {
			add("title does not start with the focus keyword %q", kw)
		}

		maxOccurrences := MaxDensityFreshKeyword
		if usedBefore {
			maxOccurrences = MaxDensityUsedKeyword
		}
		if count := countKeyword(text, kw); count > maxOccurrences {
			add("focus keyword %q appears %d times in the content, maximum is %d", kw, count, maxOccurrences)
		}

		if !containsKeywordOrSynonym(firstParagraph(rec.Content), kw, synonyms) {
			add("first paragraph does not mention the focus keyword %q", kw)
		}

		headingHit := false
		for _, h := range subheadings(rec.Content) {
			if containsKeywordOrSynonym(h, kw, synonyms) {
				headingHit = true
				break
			}
		}
		if !headingHit {
			add("no H2 or H3 heading mentions the focus keyword %q or a synonym", kw)
		}

		altHit := false
		for _, ip := range rec.ImagePrompts {
			if containsKeywordOrSynonym(ip.Alt, kw, synonyms) {
				altHit = true
				break
			}
		}
		if len(rec.ImagePrompts) > 0 && !altHit {
			add("no image alt text mentions the focus keyword %q or a synonym", kw)
		}

		for _, l := range rec.InternalLinks {
			if strings.EqualFold(strings.TrimSpace(l.Anchor), kw) {
				add("internal link anchor %q must not equal the focus keyword", l.Anchor)
			}
		}
	}

	if len(rec.InternalLinks) > 0 && len(rec.InternalLinks) < MinInternalLinks {
		add("only %d internal link(s), minimum is %d", len(rec.InternalLinks), MinInternalLinks)
	}

	if boldTagPattern.MatchString(rec.Content) {
		add("content contains bold or strong tags")
	}

	stats := analyzeSentences(splitSentences(text))
	if stats.Count > 0 {
		if stats.AvgWords > AvgSentenceWordsMax {
			add("average sentence length is %.1f words, maximum is %.0f", stats.AvgWords, AvgSentenceWordsMax)
		}
		if stats.LongShare > LongSentenceMaxShare {
			add("%.0f%% of sentences exceed %d words, maximum is %.0f%%",
				stats.LongShare*100, LongSentenceWords, LongSentenceMaxShare*100)
		}
		if stats.TransitionShare < TransitionMinShare {
			add("only %.0f%% of sentences contain a transition word, minimum is %.0f%%",
				stats.TransitionShare*100, TransitionMinShare*100)
		}
	}

	return violations
}

// hasKeywordPrefix reports whether the title starts with the keyword,
// case-insensitively.
func hasKeywordPrefix(title, keyword string) bool {
	if len(title) < len(keyword) {
		return false
	}
	return strings.EqualFold(title[:len(keyword)], keyword)
}

// countKeyword counts case-insensitive whole-word occurrences of a keyword
// (which may be a phrase) in plain text.
func countKeyword(text, keyword string) int {
	if keyword == "" {
		return 0
	}
	re, err := keywordPattern(keyword)
	if err != nil {
		return strings.Count(strings.ToLower(text), strings.ToLower(keyword))
	}
	return len(re.FindAllStringIndex(text, -1))
}

func containsKeywordOrSynonym(text, keyword string, synonyms []string) bool {
	if countKeyword(text, keyword) > 0 {
		return true
	}
	for _, s := range synonyms {
		if countKeyword(text, s) > 0 {
			return true
		}
	}
	return false
}

func keywordPattern(keyword string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
}

package generator

import (
	"fmt"
	"strings"
	"unicode"
)

// AutoFix applies deterministic, non-LLM corrections to a record in place
// and reports whether anything changed. Every rule fires independently off
// its own trigger and running the engine twice yields the same record as
// running it once. A false return means no rule fired at all; after a true
// return the caller re-runs the validator, since the engine does not
// guarantee full compliance.
func AutoFix(rec *ContentRecord, usedBefore bool, rules Rules) bool {
	changed := false
	apply := func(before, after string) string {
		if before != after {
			changed = true
		}
		return after
	}

	kw := rec.FocusKeyword
	synonyms := rules.synonymsFor(rec)

	// Title: markup never survives, keyword prefix is enforced, then the
	// length cap.
	rec.Title = apply(rec.Title, collapseWhitespace(stripTags(rec.Title)))
	if kw != "" && !hasKeywordPrefix(rec.Title, kw) {
		rec.Title = apply(rec.Title, kw+" - "+rec.Title)
	}
	if len([]rune(rec.Title)) > TitleMaxLen {
		rec.Title = apply(rec.Title, truncateAtWord(rec.Title, TitleMaxLen))
	}

	rec.MetaDescription = apply(rec.MetaDescription, truncateAtWord(rec.MetaDescription, MetaDescriptionMaxLen))

	rec.Content = apply(rec.Content, dropLeadingTitleHeading(rec.Content, rec.Title))
	rec.Content = apply(rec.Content, removeBoldTags(rec.Content))

	if kw != "" && !containsKeywordOrSynonym(firstParagraph(rec.Content), kw, synonyms) {
		intro := fmt.Sprintf("<p>Here is a closer look at %s.</p>\n", kw)
		rec.Content = apply(rec.Content, intro+rec.Content)
	}

	if kw != "" {
		maxOccurrences := MaxDensityFreshKeyword
		keep := KeepFirstFreshKeyword
		if usedBefore {
			maxOccurrences = MaxDensityUsedKeyword
			keep = KeepFirstUsedKeyword
		}
		if countKeyword(plainText(rec.Content), kw) > maxOccurrences {
			rec.Content = apply(rec.Content, thinKeyword(rec.Content, kw, keep, synonyms))
		}
	}

	if len(rec.ImagePrompts) == 0 {
		subject := kw
		if subject == "" {
			subject = rec.Title
		}
		rec.ImagePrompts = append(rec.ImagePrompts, ImagePrompt{
			Prompt: fmt.Sprintf("Feature illustration for an article about %s", subject),
			Alt:    subject,
		})
		changed = true
	} else if kw != "" {
		altHit := false
		for _, ip := range rec.ImagePrompts {
			if containsKeywordOrSynonym(ip.Alt, kw, synonyms) {
				altHit = true
				break
			}
		}
		if !altHit {
			rec.ImagePrompts[0].Alt = strings.TrimSpace(kw + " - " + rec.ImagePrompts[0].Alt)
			changed = true
		}
	}

	for _, fallback := range rules.InternalLinkFallbacks {
		if len(rec.InternalLinks) >= MinInternalLinks {
			break
		}
		if kw != "" && strings.EqualFold(fallback.Anchor, kw) {
			continue
		}
		if hasLinkURL(rec.InternalLinks, fallback.URL) {
			continue
		}
		rec.InternalLinks = append(rec.InternalLinks, fallback)
		changed = true
	}

	if fb := rules.OutboundLinkFallback; fb.URL != "" && !hasOutboundLink(rec.Content) {
		rec.Content = apply(rec.Content, insertAfterFirstParagraph(rec.Content, outboundSentence(fb)))
		if !hasLinkURL(rec.OutboundLinks, fb.URL) {
			rec.OutboundLinks = append(rec.OutboundLinks, fb)
		}
	}

	rec.Content = apply(rec.Content, splitLongSentences(rec.Content))
	rec.Content = apply(rec.Content, balanceTransitions(rec.Content))

	return changed
}

func hasLinkURL(links []Link, url string) bool {
	for _, l := range links {
		if l.URL == url {
			return true
		}
	}
	return false
}

func outboundSentence(l Link) string {
	return fmt.Sprintf(`<p>See <a href="%s">%s</a> for additional background.</p>`, l.URL, l.Anchor)
}

// insertAfterFirstParagraph places block after the first closing </p>, or at
// the end when the content carries no paragraph tags.
func insertAfterFirstParagraph(content, block string) string {
	if loc := paragraphPattern.FindStringIndex(content); loc != nil {
		return content[:loc[1]] + "\n" + block + content[loc[1]:]
	}
	return strings.TrimRight(content, "\n") + "\n" + block
}

// thinKeyword rewrites excess keyword occurrences with rotating synonyms in
// a single left-to-right pass, preserving the first keep matches. Matches
// inside tags (alt text, hrefs) are never touched, and synonyms that embed
// the keyword are skipped so the count actually drops.
func thinKeyword(content, keyword string, keep int, synonyms []string) string {
	re, err := keywordPattern(keyword)
	if err != nil {
		return content
	}

	replacements := make([]string, 0, len(synonyms))
	for _, s := range synonyms {
		if countKeyword(s, keyword) == 0 {
			replacements = append(replacements, s)
		}
	}
	if len(replacements) == 0 {
		replacements = []string{"it"}
	}

	var b strings.Builder
	b.Grow(len(content))
	last, kept, used := 0, 0, 0
	for _, loc := range re.FindAllStringIndex(content, -1) {
		if insideTag(content, loc[0]) {
			continue
		}
		if kept < keep {
			kept++
			continue
		}
		b.WriteString(content[last:loc[0]])
		b.WriteString(matchCase(content[loc[0]:loc[1]], replacements[used%len(replacements)]))
		used++
		last = loc[1]
	}
	b.WriteString(content[last:])
	return b.String()
}

// insideTag reports whether pos falls between an unclosed '<' and its '>'.
func insideTag(s string, pos int) bool {
	open := strings.LastIndexByte(s[:pos], '<')
	if open < 0 {
		return false
	}
	return strings.IndexByte(s[open:pos], '>') < 0
}

// matchCase capitalizes the replacement when the original match did.
func matchCase(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	if unicode.IsUpper([]rune(original)[0]) {
		return upperFirst(replacement)
	}
	return replacement
}

func upperFirst(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// lowerFirst lowercases a leading capital unless the word looks like an
// acronym or proper noun in caps.
func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) > 1 && unicode.IsUpper(r[0]) && unicode.IsUpper(r[1]) {
		return s
	}
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// splitLongSentences breaks sentences over the long-sentence limit at their
// first comma, repeating inside each paragraph until no splittable sentence
// remains. Only paragraphs without nested markup are touched; splitting
// across inline tags would mangle them.
func splitLongSentences(content string) string {
	return paragraphPattern.ReplaceAllStringFunc(content, func(p string) string {
		m := paragraphPattern.FindStringSubmatch(p)
		inner := m[1]
		if strings.Contains(inner, "<") {
			return p
		}
		sentences := splitSentences(inner)
		out := make([]string, 0, len(sentences))
		split := false
		for _, s := range sentences {
			parts := splitSentence(s)
			if len(parts) > 1 {
				split = true
			}
			out = append(out, parts...)
		}
		if !split {
			return p
		}
		return strings.Replace(p, inner, strings.Join(out, " "), 1)
	})
}

// splitSentence recursively halves a long sentence at its first usable comma.
func splitSentence(s string) []string {
	if wordCount(s) <= LongSentenceWords {
		return []string{s}
	}
	idx := splitIndex(s)
	if idx < 0 {
		return []string{s}
	}
	first := ensureTerminated(s[:idx])
	rest := lowerFirstToUpper(strings.TrimSpace(s[idx+2:]))
	out := []string{first}
	out = append(out, splitSentence(rest)...)
	return out
}

// splitIndex finds the first comma a sentence can be cut at. A comma right
// after a leading transition word is skipped; cutting there would strand the
// transition as a one-word sentence.
func splitIndex(s string) int {
	idx := strings.Index(s, ", ")
	if idx < 0 {
		return -1
	}
	lead := strings.ToLower(strings.TrimSpace(s[:idx]))
	for _, w := range transitionWords {
		if lead == w {
			next := strings.Index(s[idx+2:], ", ")
			if next < 0 {
				return -1
			}
			return idx + 2 + next
		}
	}
	return idx
}

func ensureTerminated(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), ",;:")
	if s == "" {
		return s
	}
	last := s[len(s)-1]
	if last != '.' && last != '?' && last != '!' {
		s += "."
	}
	return s
}

func lowerFirstToUpper(s string) string {
	if s == "" {
		return s
	}
	return upperFirst(s)
}

// balanceTransitions prepends rotating transition words to paragraph-opening
// sentences until at least the minimum share of sentences carries one, or no
// untouched paragraph remains.
func balanceTransitions(content string) string {
	sentences := splitSentences(plainText(content))
	if len(sentences) == 0 {
		return content
	}
	have := 0
	for _, s := range sentences {
		if hasTransitionWord(s) {
			have++
		}
	}
	// Smallest count satisfying the minimum share.
	target := (len(sentences)*30 + 99) / 100
	needed := target - have
	if needed <= 0 {
		return content
	}

	used := 0
	return paragraphPattern.ReplaceAllStringFunc(content, func(p string) string {
		if needed <= 0 {
			return p
		}
		m := paragraphPattern.FindStringSubmatch(p)
		inner := m[1]
		if strings.Contains(inner, "<") || strings.TrimSpace(inner) == "" {
			return p
		}
		first := splitSentences(inner)
		if len(first) == 0 || hasTransitionWord(first[0]) {
			return p
		}
		// Prepending adds a word; a sentence already at the limit would be
		// pushed over it and then cut back apart on the next pass.
		if wordCount(first[0]) >= LongSentenceWords {
			return p
		}
		word := upperFirst(transitionWords[used%len(transitionWords)])
		used++
		needed--
		rebuilt := word + ", " + lowerFirst(strings.TrimSpace(inner))
		return strings.Replace(p, inner, rebuilt, 1)
	})
}

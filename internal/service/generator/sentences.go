package generator

import (
	"strings"
	"unicode"
)

// splitSentences tokenizes plain text into sentences. A sentence ends at
// '.', '?' or '!' followed by whitespace and an uppercase letter or digit,
// which keeps abbreviations like "e.g. example" and decimals intact most of
// the time. The result is bounded by the input length and is shared between
// the validator and the auto-fixer instead of being recomputed per rule.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var sentences []string
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		// Consume a run of terminators ("..." or "?!").
		j := i + 1
		for j < len(runes) && (runes[j] == '.' || runes[j] == '?' || runes[j] == '!') {
			j++
		}
		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k == len(runes) {
			break // trailing terminator, handled below
		}
		if k > j && (unicode.IsUpper(runes[k]) || unicode.IsDigit(runes[k])) {
			if s := strings.TrimSpace(string(runes[start:j])); s != "" {
				sentences = append(sentences, s)
			}
			start = k
			i = k - 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// wordCount counts whitespace-separated words.
func wordCount(s string) int {
	return len(strings.Fields(s))
}

// sentenceStats aggregates the readability numbers the rules care about.
type sentenceStats struct {
	Count           int
	AvgWords        float64
	LongShare       float64 // share of sentences over LongSentenceWords words
	TransitionShare float64
}

func analyzeSentences(sentences []string) sentenceStats {
	var st sentenceStats
	st.Count = len(sentences)
	if st.Count == 0 {
		return st
	}
	words, long, transitions := 0, 0, 0
	for _, s := range sentences {
		n := wordCount(s)
		words += n
		if n > LongSentenceWords {
			long++
		}
		if hasTransitionWord(s) {
			transitions++
		}
	}
	st.AvgWords = float64(words) / float64(st.Count)
	st.LongShare = float64(long) / float64(st.Count)
	st.TransitionShare = float64(transitions) / float64(st.Count)
	return st
}

func hasTransitionWord(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, w := range transitionWords {
		if idx := strings.Index(lower, w); idx >= 0 {
			// Whole-word match only.
			before := idx == 0 || !unicode.IsLetter(rune(lower[idx-1]))
			afterIdx := idx + len(w)
			after := afterIdx >= len(lower) || !unicode.IsLetter(rune(lower[afterIdx]))
			if before && after {
				return true
			}
		}
	}
	return false
}

package generator

import "strings"

// Rules carries the configurable word lists and fallback targets consumed by
// the validator and auto-fixer. Zero values fall back to the defaults below.
type Rules struct {
	// ExtraSynonyms supplements a record's secondary keywords when the
	// auto-fixer rotates replacements for an over-dense focus keyword.
	ExtraSynonyms []string

	// InternalLinkFallbacks are appended until a record carries the minimum
	// number of internal links.
	InternalLinkFallbacks []Link

	// OutboundLinkFallback is inserted after the first paragraph when the
	// content carries no outbound link at all.
	OutboundLinkFallback Link
}

// DefaultRules returns the rule set used when the caller configures nothing.
func DefaultRules() Rules {
	return Rules{
		ExtraSynonyms: []string{"this topic", "the subject"},
		InternalLinkFallbacks: []Link{
			{URL: "/blog/", Anchor: "our latest articles"},
			{URL: "/about/", Anchor: "more about us"},
		},
		OutboundLinkFallback: Link{
			URL:    "https://en.wikipedia.org/",
			Anchor: "further reading",
		},
	}
}

// synonymsFor merges a record's secondary keywords with the configured
// extras, preserving order. The focus keyword itself is never a synonym.
func (r Rules) synonymsFor(rec *ContentRecord) []string {
	out := make([]string, 0, len(rec.SecondaryKeywords)+len(r.ExtraSynonyms))
	seen := map[string]bool{}
	for _, lists := range [][]string{rec.SecondaryKeywords, r.ExtraSynonyms} {
		for _, s := range lists {
			if s == "" || strings.EqualFold(s, rec.FocusKeyword) || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// transitionWords is the fixed list the readability rules recognize.
var transitionWords = []string{
	"however",
	"moreover",
	"therefore",
	"furthermore",
	"additionally",
	"consequently",
	"meanwhile",
	"nevertheless",
	"nonetheless",
	"subsequently",
}

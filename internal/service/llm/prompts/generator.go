package prompts

import (
	"fmt"
	"strings"
)

// LinkCandidate is an existing article offered to the model as an internal
// link target.
type LinkCandidate struct {
	Title string
	URL   string
}

// ArticleSpec describes the article a prompt should request.
type ArticleSpec struct {
	Topic      string
	Keywords   []string
	WordTarget int
	Links      []LinkCandidate
}

// Generator creates prompts for LLM services
type Generator struct{}

// NewGenerator creates a new prompt generator
func NewGenerator() *Generator {
	return &Generator{}
}

// ArticlePrompt creates the shared generation prompt: topic, word target,
// the strict-JSON field list with its SEO constraints, and up to five real
// internal-link candidates so the model links to pages that exist.
func (g *Generator) ArticlePrompt(spec ArticleSpec) string {
	var sb strings.Builder

	sb.WriteString("You are an expert SEO content writer.\n\n")
	sb.WriteString(fmt.Sprintf("Write a complete article about: %s\n", spec.Topic))
	sb.WriteString(fmt.Sprintf("Target length: approximately %d words.\n", spec.WordTarget))

	if len(spec.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf("Focus keyword: %q\n", spec.Keywords[0]))
		if len(spec.Keywords) > 1 {
			sb.WriteString(fmt.Sprintf("Secondary keywords: %s\n", strings.Join(spec.Keywords[1:], ", ")))
		}
	}

	sb.WriteString("\nFollow every rule below:\n")
	sb.WriteString("- The title starts with the focus keyword and stays under 60 characters.\n")
	sb.WriteString("- The meta description stays under 155 characters.\n")
	sb.WriteString("- The first paragraph mentions the focus keyword.\n")
	sb.WriteString("- At least one H2 or H3 heading contains the focus keyword or a close synonym.\n")
	sb.WriteString("- Use the focus keyword at most 8 times in the body.\n")
	sb.WriteString("- Use semantic HTML for the content: <p>, <h2>, <h3>, <ul>, <li>, <a>. Never use <b> or <strong>.\n")
	sb.WriteString("- Keep sentences short: average under 20 words, and avoid sentences over 25 words.\n")
	sb.WriteString("- Start at least 30% of sentences with a transition word (however, moreover, therefore, furthermore, additionally, consequently, meanwhile, nevertheless, nonetheless, subsequently).\n")
	sb.WriteString("- Include at least 2 internal links and 1 outbound link; no internal link anchor may equal the focus keyword.\n")
	sb.WriteString("- Include at least one image prompt whose alt text contains the focus keyword.\n")

	if len(spec.Links) > 0 {
		sb.WriteString("\nPrefer these existing pages as internal link targets:\n")
		max := len(spec.Links)
		if max > 5 {
			max = 5
		}
		for _, link := range spec.Links[:max] {
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", link.Title, link.URL))
		}
	}

	sb.WriteString("\nResponse format: a single JSON object with the fields ")
	sb.WriteString("'title', 'meta_description', 'slug', 'content', 'excerpt', 'focus_keyword', ")
	sb.WriteString("'secondary_keywords', 'tags', 'image_prompts' (list of {prompt, alt}), ")
	sb.WriteString("'internal_links' (list of {url, anchor}), 'outbound_links' (list of {url, anchor}).\n")
	sb.WriteString("Do not include any explanations or markdown fences, just return the JSON object.")

	return sb.String()
}

// CorrectivePrompt restates the original prompt together with the rule
// violations the first response produced. Sent exactly once per provider.
func (g *Generator) CorrectivePrompt(base string, violations []string) string {
	var sb strings.Builder

	sb.WriteString(base)
	sb.WriteString("\n\nYour previous response violated these rules:\n")
	for _, v := range violations {
		sb.WriteString("- ")
		sb.WriteString(v)
		sb.WriteString("\n")
	}
	sb.WriteString("\nRegenerate the article and fix every violation listed above. ")
	sb.WriteString("Return the same strict JSON object format, with no explanations.")

	return sb.String()
}

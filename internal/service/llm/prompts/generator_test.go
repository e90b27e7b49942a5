package prompts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArticlePrompt(t *testing.T) {
	g := NewGenerator()
	prompt := g.ArticlePrompt(ArticleSpec{
		Topic:      "Brewing better coffee at home",
		Keywords:   []string{"coffee brewing", "pour over", "grind size"},
		WordTarget: 1000,
		Links: []LinkCandidate{
			{Title: "Grinding basics", URL: "/grinding-basics/"},
		},
	})

	assert.Contains(t, prompt, "Brewing better coffee at home")
	assert.Contains(t, prompt, "approximately 1000 words")
	assert.Contains(t, prompt, `Focus keyword: "coffee brewing"`)
	assert.Contains(t, prompt, "Secondary keywords: pour over, grind size")
	assert.Contains(t, prompt, "- Grinding basics (/grinding-basics/)")
	assert.Contains(t, prompt, "'internal_links'")
	assert.Contains(t, prompt, "just return the JSON object")
}

func TestArticlePromptCapsLinkCandidates(t *testing.T) {
	var links []LinkCandidate
	for i := 0; i < 8; i++ {
		links = append(links, LinkCandidate{
			Title: fmt.Sprintf("Post %d", i),
			URL:   fmt.Sprintf("/post-%d/", i),
		})
	}

	prompt := NewGenerator().ArticlePrompt(ArticleSpec{
		Topic:      "Coffee",
		Keywords:   []string{"coffee"},
		WordTarget: 500,
		Links:      links,
	})

	assert.Contains(t, prompt, "Post 4")
	assert.NotContains(t, prompt, "Post 5")
}

func TestArticlePromptWithoutLinks(t *testing.T) {
	prompt := NewGenerator().ArticlePrompt(ArticleSpec{
		Topic:      "Coffee",
		Keywords:   []string{"coffee"},
		WordTarget: 500,
	})
	assert.NotContains(t, prompt, "existing pages")
}

func TestCorrectivePrompt(t *testing.T) {
	g := NewGenerator()
	base := g.ArticlePrompt(ArticleSpec{Topic: "Coffee", Keywords: []string{"coffee"}, WordTarget: 500})
	violations := []string{
		"title is 70 characters, maximum is 60",
		"content contains bold or strong tags",
	}

	prompt := g.CorrectivePrompt(base, violations)
	assert.True(t, strings.HasPrefix(prompt, base))
	assert.Contains(t, prompt, "Your previous response violated these rules:")
	for _, v := range violations {
		assert.Contains(t, prompt, "- "+v)
	}
	assert.Contains(t, prompt, "fix every violation")
}

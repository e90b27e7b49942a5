package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrictJSON(t *testing.T) {
	raw := `{
		"title": "Coffee brewing guide",
		"meta_description": "A short guide to coffee brewing.",
		"slug": "coffee-brewing-guide",
		"content": "<p>Fresh beans matter.</p>",
		"excerpt": "A short guide.",
		"focus_keyword": "coffee brewing",
		"secondary_keywords": ["pour over", "french press"],
		"tags": ["coffee"],
		"image_prompts": [{"prompt": "A pour over setup", "alt": "coffee brewing setup"}],
		"internal_links": [{"url": "/guides/pour-over/", "anchor": "pour over guide"}],
		"outbound_links": [{"url": "https://example.com/", "anchor": "brewing study"}]
	}`

	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Coffee brewing guide", rec.Title)
	assert.Equal(t, "coffee-brewing-guide", rec.Slug)
	assert.Equal(t, "coffee brewing", rec.FocusKeyword)
	assert.Equal(t, []string{"pour over", "french press"}, rec.SecondaryKeywords)
	require.Len(t, rec.ImagePrompts, 1)
	assert.Equal(t, "coffee brewing setup", rec.ImagePrompts[0].Alt)
	require.Len(t, rec.InternalLinks, 1)
	assert.Equal(t, "/guides/pour-over/", rec.InternalLinks[0].URL)
}

func TestParseFieldAliases(t *testing.T) {
	raw := `{
		"heading": "Coffee brewing guide",
		"meta_desc": "A short guide.",
		"body": "<p>Fresh beans matter.</p>",
		"summary": "A short guide.",
		"keyword": "coffee brewing",
		"keywords": "pour over, french press",
		"images": ["A pour over setup"],
		"external_links": [{"href": "https://example.com/", "text": "brewing study"}]
	}`

	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Coffee brewing guide", rec.Title)
	assert.Equal(t, "A short guide.", rec.MetaDescription)
	assert.Equal(t, "<p>Fresh beans matter.</p>", rec.Content)
	assert.Equal(t, "coffee brewing", rec.FocusKeyword)
	assert.Equal(t, []string{"pour over", "french press"}, rec.SecondaryKeywords)
	require.Len(t, rec.ImagePrompts, 1)
	assert.Equal(t, "A pour over setup", rec.ImagePrompts[0].Prompt)
	require.Len(t, rec.OutboundLinks, 1)
	assert.Equal(t, "https://example.com/", rec.OutboundLinks[0].URL)
	assert.Equal(t, "brewing study", rec.OutboundLinks[0].Anchor)
}

func TestParseFencedJSON(t *testing.T) {
	raw := "```json\n{\"title\":\"Coffee tips\",\"content\":\"<p>Fresh beans.</p>\"}\n```"
	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Coffee tips", rec.Title)
}

func TestParseTruncatedJSON(t *testing.T) {
	raw := `{"title":"Coffee tips","content":"<p>Great coffee starts with fresh beans`
	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Coffee tips", rec.Title)
	assert.Contains(t, rec.Content, "Great coffee starts")
}

func TestParseJSONEmbeddedInProse(t *testing.T) {
	raw := "Here is your article:\n" +
		`{"title":"Coffee tips","content":"<p>Fresh beans.</p>"}` +
		"\nLet me know if you need changes!"
	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Coffee tips", rec.Title)
}

func TestParseTopLevelArray(t *testing.T) {
	raw := `[{"title":"Coffee tips","content":"<p>Fresh beans.</p>"}]`
	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Coffee tips", rec.Title)
}

func TestParseLabeledFallback(t *testing.T) {
	raw := "TITLE: Coffee tips\n" +
		"META_DESCRIPTION: A short guide.\n" +
		"FOCUS_KEYWORD: coffee\n" +
		"CONTENT: # Coffee tips\n\nFresh beans matter."

	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Coffee tips", rec.Title)
	assert.Equal(t, "coffee", rec.FocusKeyword)
	assert.Contains(t, rec.Content, "<p>Fresh beans matter.</p>")
	// The duplicated title heading is dropped from the body.
	assert.NotContains(t, rec.Content, "<h1>")
}

func TestParseLabeledKeepsExistingHTML(t *testing.T) {
	raw := "TITLE: Coffee tips\nCONTENT: <p>Fresh beans matter.</p>"
	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "<p>Fresh beans matter.</p>", rec.Content)
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse("   \n  ")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ReasonEmptyInput, perr.Reason)
}

func TestParseUndecodable(t *testing.T) {
	_, err := Parse("I could not generate the article, sorry.")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ReasonDecodeFailed, perr.Reason)
}

func TestParseMissingRequiredFields(t *testing.T) {
	_, err := Parse(`{"title":"Coffee tips"}`)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ReasonMissingRequiredFields, perr.Reason)
}

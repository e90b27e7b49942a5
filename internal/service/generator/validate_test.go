package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validRecord builds a record that satisfies every rule: the title starts
// with the focus keyword, keyword density stays low, a subheading and the
// first paragraph mention the keyword, sentences are short with plenty of
// transition words, and the link and image requirements are all met.
func validRecord() *ContentRecord {
	return &ContentRecord{
		Title:           "Coffee brewing guide for beginners",
		MetaDescription: "Learn coffee brewing basics with this short guide.",
		Slug:            "coffee-brewing-guide",
		Content: "<p>Coffee brewing is a simple craft. However, many people overlook the basics. Moreover, good beans matter most.</p>\n" +
			"<h2>Coffee brewing methods</h2>\n" +
			"<p>Therefore, start with a pour over. Furthermore, keep your water hot. Additionally, grind fresh every day.</p>\n" +
			`<p>Meanwhile, see <a href="https://example.com/brew-science">this brewing study</a> for data. Nevertheless, practice beats theory.</p>`,
		Excerpt:           "A short coffee brewing guide.",
		FocusKeyword:      "coffee brewing",
		SecondaryKeywords: []string{"pour over"},
		Tags:              []string{"coffee"},
		ImagePrompts: []ImagePrompt{
			{Prompt: "A pour over setup on a wooden table", Alt: "coffee brewing setup"},
		},
		InternalLinks: []Link{
			{URL: "/guides/pour-over/", Anchor: "pour over guide"},
			{URL: "/blog/", Anchor: "our latest articles"},
		},
		OutboundLinks: []Link{
			{URL: "https://example.com/brew-science", Anchor: "this brewing study"},
		},
	}
}

type fakeHistory struct {
	used map[string]bool
}

func (f *fakeHistory) WasUsedBefore(keyword string) bool {
	return f.used[strings.ToLower(keyword)]
}

func hasViolation(violations []string, substr string) bool {
	for _, v := range violations {
		if strings.Contains(v, substr) {
			return true
		}
	}
	return false
}

func TestValidateCleanRecord(t *testing.T) {
	violations := Validate(validRecord(), &fakeHistory{})
	assert.Empty(t, violations)
}

func TestValidateDeterministic(t *testing.T) {
	rec := validRecord()
	rec.Title = "A guide without the keyword up front"
	first := Validate(rec, &fakeHistory{})
	second := Validate(rec, &fakeHistory{})
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestValidateMissingFields(t *testing.T) {
	violations := Validate(&ContentRecord{}, nil)
	for _, field := range []string{
		"title", "meta_description", "slug", "content",
		"excerpt", "focus_keyword", "image_prompts", "internal_links",
	} {
		assert.True(t, hasViolation(violations, field+" is missing"), "expected %s violation", field)
	}
}

func TestValidateTitleRules(t *testing.T) {
	rec := validRecord()
	rec.Title = strings.Repeat("x", 70)
	violations := Validate(rec, &fakeHistory{})
	assert.True(t, hasViolation(violations, "title is 70 characters"))
	assert.True(t, hasViolation(violations, "does not start with the focus keyword"))
}

func TestValidateMetaDescriptionLength(t *testing.T) {
	rec := validRecord()
	rec.MetaDescription = strings.Repeat("a", 200)
	violations := Validate(rec, &fakeHistory{})
	assert.True(t, hasViolation(violations, "meta description is 200 characters"))
}

func TestValidateUsedKeywordGetsStricterDensity(t *testing.T) {
	rec := validRecord()
	history := &fakeHistory{used: map[string]bool{"coffee brewing": true}}
	violations := Validate(rec, history)
	assert.True(t, hasViolation(violations, "maximum is 1"),
		"a previously used keyword should only be allowed once, got: %v", violations)

	// The same record is fine when the keyword is fresh.
	assert.Empty(t, Validate(rec, &fakeHistory{}))
}

func TestValidateDensityCap(t *testing.T) {
	rec := validRecord()
	rec.Content = "<p>" + strings.Repeat("Coffee brewing is great. ", 10) + "</p>\n" +
		"<h2>Pour over methods</h2>"
	violations := Validate(rec, &fakeHistory{})
	assert.True(t, hasViolation(violations, "appears 10 times"))
}

func TestValidateFirstParagraphKeyword(t *testing.T) {
	rec := validRecord()
	rec.Content = "<p>Good beans matter most. However, technique counts too.</p>\n" +
		"<h2>Coffee brewing methods</h2>\n" +
		"<p>Therefore, start simple. Furthermore, stay patient.</p>"
	violations := Validate(rec, &fakeHistory{})
	assert.True(t, hasViolation(violations, "first paragraph does not mention"))
}

func TestValidateSubheadingKeyword(t *testing.T) {
	rec := validRecord()
	rec.Content = "<p>Coffee brewing is a simple craft. However, many people overlook the basics.</p>\n" +
		"<h2>Getting started</h2>\n" +
		"<p>Therefore, keep at it. Furthermore, enjoy the cup.</p>"
	violations := Validate(rec, &fakeHistory{})
	assert.True(t, hasViolation(violations, "no H2 or H3 heading mentions"))
}

func TestValidateSynonymSatisfiesHeadingRule(t *testing.T) {
	rec := validRecord()
	rec.Content = strings.Replace(rec.Content,
		"<h2>Coffee brewing methods</h2>",
		"<h2>Pour over methods</h2>", 1)
	violations := Validate(rec, &fakeHistory{})
	assert.False(t, hasViolation(violations, "no H2 or H3 heading mentions"), "got: %v", violations)
}

func TestValidateImageAltKeyword(t *testing.T) {
	rec := validRecord()
	rec.ImagePrompts = []ImagePrompt{{Prompt: "A ceramic mug", Alt: "a mug"}}
	violations := Validate(rec, &fakeHistory{})
	assert.True(t, hasViolation(violations, "no image alt text mentions"))
}

func TestValidateInternalLinkMinimum(t *testing.T) {
	rec := validRecord()
	rec.InternalLinks = rec.InternalLinks[:1]
	violations := Validate(rec, &fakeHistory{})
	assert.True(t, hasViolation(violations, "only 1 internal link(s)"))
}

func TestValidateAnchorMustNotEqualKeyword(t *testing.T) {
	rec := validRecord()
	rec.InternalLinks[0].Anchor = "Coffee Brewing"
	violations := Validate(rec, &fakeHistory{})
	assert.True(t, hasViolation(violations, "must not equal the focus keyword"))
}

func TestValidateBoldTags(t *testing.T) {
	rec := validRecord()
	rec.Content += "\n<p>Additionally, <strong>bold</strong> claims sell.</p>"
	violations := Validate(rec, &fakeHistory{})
	assert.True(t, hasViolation(violations, "bold or strong tags"))
}

func TestValidateSentenceRules(t *testing.T) {
	rec := validRecord()
	rec.Content = "<p>Coffee brewing " + strings.Repeat("really ", 28) + "matters a lot.</p>"
	violations := Validate(rec, &fakeHistory{})
	assert.True(t, hasViolation(violations, "average sentence length"))
	assert.True(t, hasViolation(violations, "exceed 25 words"))
	assert.True(t, hasViolation(violations, "transition word"))
}

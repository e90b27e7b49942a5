package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoFixCleanRecordUnchanged(t *testing.T) {
	rec := validRecord()
	changed := AutoFix(rec, false, DefaultRules())
	assert.False(t, changed)
	assert.Empty(t, Validate(rec, &fakeHistory{}))
}

func TestAutoFixPrefixesTitleWithKeyword(t *testing.T) {
	rec := validRecord()
	rec.Title = "Ultimate guide"
	changed := AutoFix(rec, false, DefaultRules())
	assert.True(t, changed)
	assert.Equal(t, "coffee brewing - Ultimate guide", rec.Title)
}

func TestAutoFixTruncatesLongTitle(t *testing.T) {
	rec := validRecord()
	rec.Title = "Coffee brewing techniques every single home barista should really learn properly"
	changed := AutoFix(rec, false, DefaultRules())
	assert.True(t, changed)
	assert.LessOrEqual(t, len([]rune(rec.Title)), TitleMaxLen)
	assert.True(t, strings.HasPrefix(rec.Title, "Coffee brewing"))
	assert.True(t, strings.HasSuffix(rec.Title, "..."))
}

func TestAutoFixInsertsKeywordIntro(t *testing.T) {
	rec := validRecord()
	rec.Content = "<p>Good beans matter most. However, they cost more. Moreover, freshness counts.</p>\n" +
		"<h2>Coffee brewing methods</h2>\n" +
		`<p>Therefore, see <a href="https://example.com/">this study</a> for data.</p>`
	changed := AutoFix(rec, false, DefaultRules())
	assert.True(t, changed)
	assert.True(t, strings.HasPrefix(rec.Content,
		"<p>Here is a closer look at coffee brewing.</p>\n"))
}

func TestAutoFixThinsKeywordDensity(t *testing.T) {
	rec := validRecord()
	rec.Content = "<p>" + strings.Repeat("Coffee brewing is great. ", 10) + "</p>"

	changed := AutoFix(rec, false, DefaultRules())
	assert.True(t, changed)

	count := countKeyword(plainText(rec.Content), rec.FocusKeyword)
	assert.Equal(t, KeepFirstFreshKeyword, count)
	// Excess occurrences rotate through the synonyms.
	assert.Contains(t, rec.Content, "Pour over is great.")
	assert.Contains(t, rec.Content, "This topic is great.")
	assert.Contains(t, rec.Content, "The subject is great.")
}

func TestAutoFixThinsUsedKeywordToOne(t *testing.T) {
	rec := validRecord()
	rec.Content = "<p>" + strings.Repeat("Coffee brewing is great. ", 4) + "</p>"

	changed := AutoFix(rec, true, DefaultRules())
	assert.True(t, changed)
	assert.Equal(t, KeepFirstUsedKeyword, countKeyword(plainText(rec.Content), rec.FocusKeyword))
}

func TestAutoFixSynthesizesImagePrompt(t *testing.T) {
	rec := validRecord()
	rec.ImagePrompts = nil
	changed := AutoFix(rec, false, DefaultRules())
	assert.True(t, changed)
	require.Len(t, rec.ImagePrompts, 1)
	assert.Equal(t, "coffee brewing", rec.ImagePrompts[0].Alt)
	assert.Contains(t, rec.ImagePrompts[0].Prompt, "coffee brewing")
}

func TestAutoFixRewritesMissingAltText(t *testing.T) {
	rec := validRecord()
	rec.ImagePrompts = []ImagePrompt{{Prompt: "A ceramic mug", Alt: "a mug"}}
	changed := AutoFix(rec, false, DefaultRules())
	assert.True(t, changed)
	assert.Equal(t, "coffee brewing - a mug", rec.ImagePrompts[0].Alt)
}

func TestAutoFixAppendsInternalLinkFallbacks(t *testing.T) {
	rec := validRecord()
	rec.InternalLinks = nil
	changed := AutoFix(rec, false, DefaultRules())
	assert.True(t, changed)
	require.Len(t, rec.InternalLinks, MinInternalLinks)
	assert.Equal(t, "/blog/", rec.InternalLinks[0].URL)
	assert.Equal(t, "/about/", rec.InternalLinks[1].URL)
}

func TestAutoFixTopsUpInternalLinks(t *testing.T) {
	rec := validRecord()
	rec.InternalLinks = []Link{{URL: "/guides/pour-over/", Anchor: "pour over guide"}}
	changed := AutoFix(rec, false, DefaultRules())
	assert.True(t, changed)
	require.Len(t, rec.InternalLinks, MinInternalLinks)
	assert.Equal(t, "/blog/", rec.InternalLinks[1].URL)
}

func TestAutoFixInsertsOutboundLink(t *testing.T) {
	rec := validRecord()
	rec.Content = "<p>Coffee brewing is fun. However, it takes care.</p>\n" +
		"<h2>Coffee brewing methods</h2>"
	rec.OutboundLinks = nil

	changed := AutoFix(rec, false, DefaultRules())
	assert.True(t, changed)
	assert.Contains(t, rec.Content, `<a href="https://en.wikipedia.org/">further reading</a>`)
	// Inserted right after the opening paragraph.
	assert.Greater(t, strings.Index(rec.Content, "wikipedia"), strings.Index(rec.Content, "</p>"))
	assert.True(t, hasLinkURL(rec.OutboundLinks, "https://en.wikipedia.org/"))
}

func TestAutoFixSplitsLongSentences(t *testing.T) {
	rec := validRecord()
	rec.Content = "<p>The grinder setting matters a great deal for flavor balance, " +
		"and the water temperature changes extraction speed in ways that surprise " +
		"most new home brewers completely.</p>"

	changed := AutoFix(rec, false, DefaultRules())
	assert.True(t, changed)
	assert.Contains(t, rec.Content, "flavor balance.")
	assert.Contains(t, rec.Content, "And the water temperature")

	stats := analyzeSentences(splitSentences(plainText(rec.Content)))
	assert.Zero(t, stats.LongShare)
}

func TestAutoFixBalancesTransitions(t *testing.T) {
	rec := validRecord()
	rec.Content = "<p>Coffee brewing is fun. It takes care.</p>\n" +
		"<p>Good beans help. Water counts.</p>\n" +
		"<p>Patience pays off. Practice helps too.</p>\n" +
		`<p>See <a href="https://example.com/">this study</a> for data.</p>`

	changed := AutoFix(rec, false, DefaultRules())
	assert.True(t, changed)
	assert.True(t, strings.HasPrefix(rec.Content, "<p>However, coffee brewing is fun."))
	assert.Contains(t, rec.Content, "<p>Moreover, good beans help.")
	assert.Contains(t, rec.Content, "<p>Therefore, patience pays off.")

	stats := analyzeSentences(splitSentences(plainText(rec.Content)))
	assert.GreaterOrEqual(t, stats.TransitionShare, TransitionMinShare)
}

func TestAutoFixIdempotentAtSentenceLimit(t *testing.T) {
	// An opening sentence sitting exactly at the long-sentence limit must not
	// receive a transition word: the extra word would push it over the limit
	// and the next pass would cut it back apart.
	rec := validRecord()
	rec.Content = "<p>Coffee brewing " + strings.Repeat("really ", 21) + "rewards patience.</p>"

	first := AutoFix(rec, false, DefaultRules())
	assert.True(t, first)

	snapshot := rec.Content
	second := AutoFix(rec, false, DefaultRules())
	assert.False(t, second)
	assert.Equal(t, snapshot, rec.Content)
	assert.NotContains(t, rec.Content, "However.")
}

func TestSplitLongSentencesSkipsLeadingTransitionComma(t *testing.T) {
	// The only comma trails the opening transition word; cutting there would
	// strand "However." as a one-word sentence, so the sentence stays whole.
	stuck := "<p>However, " + strings.Repeat("beans ", 25) + "taste better.</p>"
	assert.Equal(t, stuck, splitLongSentences(stuck))

	long := "<p>However, the roast profile changes everything about the cup, and the " +
		"grind size compounds those changes in ways that new brewers rarely expect " +
		"when they first start brewing at home.</p>"
	got := splitLongSentences(long)
	assert.Contains(t, got, "However, the roast profile changes everything about the cup.")
	assert.Contains(t, got, "And the grind size compounds")
	assert.NotContains(t, got, "However.")
}

func TestAutoFixIdempotent(t *testing.T) {
	rec := validRecord()
	rec.Title = "Ultimate guide"
	rec.Content = "<p>" + strings.Repeat("Coffee brewing is great. ", 10) + "</p>\n" +
		"<p><strong>Bold</strong> claims abound. Flavor wins anyway.</p>"
	rec.ImagePrompts = nil
	rec.InternalLinks = nil
	rec.OutboundLinks = nil

	first := AutoFix(rec, false, DefaultRules())
	assert.True(t, first)

	snapshot := *rec
	second := AutoFix(rec, false, DefaultRules())
	assert.False(t, second)
	assert.Equal(t, snapshot.Title, rec.Title)
	assert.Equal(t, snapshot.Content, rec.Content)
}

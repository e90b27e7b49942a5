package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentencesBasic(t *testing.T) {
	got := splitSentences("First sentence. Second sentence? Third one!")
	assert.Equal(t, []string{"First sentence.", "Second sentence?", "Third one!"}, got)
}

func TestSplitSentencesKeepsAbbreviations(t *testing.T) {
	got := splitSentences("Use e.g. some fresh beans. Then brew.")
	assert.Equal(t, []string{"Use e.g. some fresh beans.", "Then brew."}, got)
}

func TestSplitSentencesKeepsDecimals(t *testing.T) {
	got := splitSentences("It costs 2.5 dollars per cup. Cheap enough.")
	assert.Equal(t, []string{"It costs 2.5 dollars per cup.", "Cheap enough."}, got)
}

func TestSplitSentencesDigitStart(t *testing.T) {
	got := splitSentences("Wait a moment. 2 cups are enough.")
	assert.Equal(t, []string{"Wait a moment.", "2 cups are enough."}, got)
}

func TestSplitSentencesEllipsis(t *testing.T) {
	got := splitSentences("Well... Then what?")
	assert.Equal(t, []string{"Well...", "Then what?"}, got)
}

func TestSplitSentencesEmpty(t *testing.T) {
	assert.Nil(t, splitSentences("   "))
	assert.Nil(t, splitSentences(""))
}

func TestAnalyzeSentences(t *testing.T) {
	stats := analyzeSentences([]string{
		"Beans matter most.",
		"However, water matters too.",
		"This one has exactly seven words total.",
	})
	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 14.0/3.0, stats.AvgWords, 0.001)
	assert.Zero(t, stats.LongShare)
	assert.InDelta(t, 1.0/3.0, stats.TransitionShare, 0.001)
}

func TestAnalyzeSentencesLongShare(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", LongSentenceWords+1)) + "."
	stats := analyzeSentences([]string{long, "Short one."})
	assert.InDelta(t, 0.5, stats.LongShare, 0.001)
}

func TestAnalyzeSentencesEmpty(t *testing.T) {
	stats := analyzeSentences(nil)
	assert.Zero(t, stats.Count)
	assert.Zero(t, stats.AvgWords)
}

func TestHasTransitionWord(t *testing.T) {
	assert.True(t, hasTransitionWord("However, the grind matters."))
	assert.True(t, hasTransitionWord("It matters; MOREOVER it compounds."))
	assert.False(t, hasTransitionWord("The howevering machine hums."))
	assert.False(t, hasTransitionWord("Plain sentence with no connector."))
}

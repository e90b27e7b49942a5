package generator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairValidInputUntouched(t *testing.T) {
	input := `{"title":"Coffee tips","content":"<p>Fresh beans.</p>"}`
	assert.Equal(t, input, Repair(input))
}

func TestRepairStripsMarkdownFence(t *testing.T) {
	input := "```json\n{\"title\":\"Coffee tips\"}\n```"
	repaired := Repair(input)
	require.True(t, json.Valid([]byte(repaired)))
	assert.Equal(t, `{"title":"Coffee tips"}`, repaired)
}

func TestRepairStripsFenceWithoutClose(t *testing.T) {
	input := "```json\n{\"title\":\"Coffee tips\"}"
	repaired := Repair(input)
	assert.True(t, json.Valid([]byte(repaired)))
}

func TestRepairEscapesNewlinesInStrings(t *testing.T) {
	input := "{\"title\":\"Coffee\ntips\"}"
	repaired := Repair(input)
	require.True(t, json.Valid([]byte(repaired)))

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(repaired), &out))
	assert.Equal(t, "Coffee\ntips", out["title"])
}

func TestRepairDropsControlCharacters(t *testing.T) {
	input := "{\"title\":\"Coffee\x00 tips\"}"
	repaired := Repair(input)
	assert.True(t, json.Valid([]byte(repaired)))
}

func TestRepairClosesTruncatedOutput(t *testing.T) {
	cases := map[string]string{
		"open array":          `{"tags":["one","two`,
		"open object":         `{"title":"Coffee tips","meta":{"a":"b`,
		"open string":         `{"title":"Great coffee starts with fresh beans`,
		"trailing backslash":  `{"title":"Coffee tips\`,
		"nested open bracket": `{"a":[1,2`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			repaired := Repair(input)
			assert.True(t, json.Valid([]byte(repaired)), "repaired: %s", repaired)
		})
	}
}

func TestRepairIrreparableReturnsOriginal(t *testing.T) {
	input := `{"title":}`
	assert.Equal(t, input, Repair(input))
}

func TestRepairIdempotent(t *testing.T) {
	input := "```json\n{\"tags\":[\"one\",\"two\n```"
	once := Repair(input)
	assert.Equal(t, once, Repair(once))
}

func TestRepairEmptyInput(t *testing.T) {
	assert.Equal(t, "", Repair(""))
}

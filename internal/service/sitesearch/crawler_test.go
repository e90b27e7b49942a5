package sitesearch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCrawlerDefaultsScheme(t *testing.T) {
	c, err := NewCrawler("example.com", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "https", c.baseURL.Scheme)
	assert.Equal(t, "example.com", c.baseURL.Hostname())
}

func TestContentWords(t *testing.T) {
	got := contentWords("How to Brew Better Coffee, at Home!")
	assert.Equal(t, []string{"brew", "better", "coffee", "home"}, got)
}

func TestOverlap(t *testing.T) {
	a := []string{"coffee", "brewing", "guide"}
	b := []string{"coffee", "grinder", "guide"}
	assert.Equal(t, 2, overlap(a, b))
	assert.Zero(t, overlap(a, []string{"espresso"}))
}

func TestFindRelatedRanksByOverlap(t *testing.T) {
	c, err := NewCrawler("https://example.com", time.Second)
	require.NoError(t, err)

	// Seed the cache so no crawl happens.
	c.pages = []page{
		{Title: "Espresso machine maintenance", URL: "https://example.com/maintenance/"},
		{Title: "Coffee brewing basics", URL: "https://example.com/basics/"},
		{Title: "Pour over coffee brewing guide", URL: "https://example.com/pour-over/"},
	}
	c.fetchedAt = time.Now()

	related, err := c.FindRelated(context.Background(), "a coffee brewing guide", 2)
	require.NoError(t, err)
	require.Len(t, related, 2)
	assert.Equal(t, "Pour over coffee brewing guide", related[0].Title)
	assert.Equal(t, "Coffee brewing basics", related[1].Title)
}

func TestFindRelatedSkipsUnrelatedPages(t *testing.T) {
	c, err := NewCrawler("https://example.com", time.Second)
	require.NoError(t, err)
	c.pages = []page{
		{Title: "Contact us", URL: "https://example.com/contact/"},
	}
	c.fetchedAt = time.Now()

	related, err := c.FindRelated(context.Background(), "coffee brewing", 5)
	require.NoError(t, err)
	assert.Empty(t, related)
}

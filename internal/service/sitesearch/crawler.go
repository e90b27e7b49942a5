// Package sitesearch discovers existing articles on the target site so
// generated content can link to real pages.
package sitesearch

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"

	"github.com/chynybekuuludastan/article_generator/internal/service/generator"
)

const (
	defaultMaxDepth = 2
	defaultCacheTTL = 30 * time.Minute
)

// page is one discovered article candidate.
type page struct {
	Title string
	URL   string
}

// Crawler finds related articles by crawling the configured site. Crawl
// results are cached in memory so consecutive generation runs do not hit
// the site again. It implements the generator's SiteSearch collaborator.
type Crawler struct {
	baseURL  *url.URL
	timeout  time.Duration
	cacheTTL time.Duration

	mu        sync.Mutex
	pages     []page
	fetchedAt time.Time
}

// NewCrawler creates a crawler rooted at the site's base URL.
func NewCrawler(baseURL string, timeout time.Duration) (*Crawler, error) {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Crawler{
		baseURL:  parsed,
		timeout:  timeout,
		cacheTTL: defaultCacheTTL,
	}, nil
}

// FindRelated returns up to limit pages whose titles share words with the
// topic, most relevant first.
func (c *Crawler) FindRelated(ctx context.Context, topic string, limit int) ([]generator.RelatedPost, error) {
	pages, err := c.sitePages(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		page  page
		score int
	}
	topicWords := contentWords(topic)
	matches := make([]scored, 0, len(pages))
	for _, p := range pages {
		if s := overlap(topicWords, contentWords(p.Title)); s > 0 {
			matches = append(matches, scored{page: p, score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]generator.RelatedPost, 0, len(matches))
	for _, m := range matches {
		out = append(out, generator.RelatedPost{Title: m.page.Title, URL: m.page.URL})
	}
	return out, nil
}

// sitePages returns the cached page list, crawling the site when the cache
// is empty or stale.
func (c *Crawler) sitePages(ctx context.Context) ([]page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pages != nil && time.Since(c.fetchedAt) < c.cacheTTL {
		return c.pages, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := c.crawl()
	if err != nil {
		if c.pages != nil {
			// Keep serving the stale cache over failing outright.
			return c.pages, nil
		}
		return nil, err
	}
	c.pages = pages
	c.fetchedAt = time.Now()
	return pages, nil
}

func (c *Crawler) crawl() ([]page, error) {
	var (
		mu    sync.Mutex
		pages []page
		seen  = map[string]bool{}
	)

	collector := colly.NewCollector(
		colly.AllowedDomains(c.baseURL.Hostname()),
		colly.MaxDepth(defaultMaxDepth),
		colly.Async(true),
	)

	collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
		Delay:       500 * time.Millisecond,
	})

	extensions.RandomUserAgent(collector)
	collector.SetRequestTimeout(c.timeout)

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		absolute := e.Request.AbsoluteURL(e.Attr("href"))
		if absolute == "" {
			return
		}
		e.Request.Visit(absolute)
	})

	collector.OnHTML("html", func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.ChildText("title"))
		if title == "" {
			title = strings.TrimSpace(e.ChildText("h1"))
		}
		if title == "" {
			return
		}

		pageURL := e.Request.URL.String()
		mu.Lock()
		defer mu.Unlock()
		if seen[pageURL] {
			return
		}
		seen[pageURL] = true
		pages = append(pages, page{Title: title, URL: pageURL})
	})

	if err := collector.Visit(c.baseURL.String()); err != nil {
		return nil, err
	}
	collector.Wait()

	return pages, nil
}

// contentWords lowercases a phrase and drops words too short to carry
// meaning.
func contentWords(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?:;\"'()")
		if len(f) > 3 {
			out = append(out, f)
		}
	}
	return out
}

// overlap counts how many words of a appear in b.
func overlap(a, b []string) int {
	set := make(map[string]bool, len(b))
	for _, w := range b {
		set[w] = true
	}
	n := 0
	for _, w := range a {
		if set[w] {
			n++
		}
	}
	return n
}

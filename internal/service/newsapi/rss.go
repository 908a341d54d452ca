package newsapi

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
)

const rssProviderName = "rss"

// RSSClient implements NewsSource over a search feed such as Google News
// (`<feedURL>?q=...&hl=en`).
type RSSClient struct {
	feedURL string
	timeout time.Duration
	parser  *gofeed.Parser
	now     func() time.Time
}

var _ drepo.NewsSource = (*RSSClient)(nil)

// NewRSS creates an RSS news source.
func NewRSS(feedURL string, timeout time.Duration) *RSSClient {
	p := gofeed.NewParser()
	p.UserAgent = "stockpulse/1.0"
	return &RSSClient{
		feedURL: feedURL,
		timeout: timeout,
		parser:  p,
		now:     time.Now,
	}
}

func (c *RSSClient) Name() string { return rssProviderName }

// Search parses the feed for company, drops items published before since
// and returns the newest limit items.
func (c *RSSClient) Search(ctx context.Context, company string, since time.Time, limit int) ([]models.NewsItem, error) {
	u, err := url.Parse(c.feedURL)
	if err != nil {
		return nil, models.NewUpstreamError(rssProviderName, "search", err)
	}
	q := u.Query()
	q.Set("q", strconv.Quote(company))
	q.Set("hl", "en")
	u.RawQuery = q.Encode()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	feed, err := c.parser.ParseURLWithContext(u.String(), ctx)
	if err != nil {
		return nil, models.NewUpstreamError(rssProviderName, "search", err)
	}

	fetched := c.now()
	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		published := it.PublishedParsed
		if published == nil {
			published = it.UpdatedParsed
		}
		if published != nil && published.Before(since) {
			continue
		}
		source := feed.Title
		if it.Author != nil && it.Author.Name != "" {
			source = it.Author.Name
		}
		items = append(items, models.NewsItem{
			Title:       it.Title,
			URL:         it.Link,
			Snippet:     CleanSnippet(it.Description),
			Source:      source,
			PublishedAt: published,
			FetchedAt:   fetched,
		})
	}

	// Undated items sort last.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

package newsapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	xhttp "StockPulse/pkg/http"
	"StockPulse/pkg/util"
)

const providerName = "newsapi"

// Client implements NewsSource against the NewsAPI /v2/everything endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
	now     func() time.Time
}

var _ drepo.NewsSource = (*Client)(nil)

// New creates a NewsAPI client.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithUserAgent("stockpulse/1.0")),
		now:     time.Now,
	}
}

func (c *Client) Name() string { return providerName }

type everythingResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Search returns up to limit articles quoting company published after since,
// ordered by popularity.
func (c *Client) Search(ctx context.Context, company string, since time.Time, limit int) ([]models.NewsItem, error) {
	if c.apiKey == "" {
		return nil, models.NewUpstreamError(providerName, "search", fmt.Errorf("api key not configured"))
	}

	var resp everythingResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v2/everything",
		QueryParams: url.Values{
			"q":        {strconv.Quote(company)},
			"from":     {util.DateOnly(since)},
			"language": {"en"},
			"sortBy":   {"popularity"},
			"pageSize": {strconv.Itoa(limit)},
			"apiKey":   {c.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, models.NewUpstreamError(providerName, "search", err)
	}
	if resp.Status != "ok" {
		return nil, models.NewUpstreamError(providerName, "search", fmt.Errorf("status %q: %s", resp.Status, resp.Message))
	}

	fetched := c.now()
	items := make([]models.NewsItem, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		source := a.Source.Name
		if source == "" {
			source = providerName
		}
		items = append(items, models.NewsItem{
			Title:       a.Title,
			URL:         a.URL,
			Snippet:     CleanSnippet(a.Description),
			Source:      source,
			PublishedAt: util.ParseTimePtr(a.PublishedAt),
			FetchedAt:   fetched,
		})
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

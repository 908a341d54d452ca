package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	xhttp "StockPulse/pkg/http"
)

const (
	providerName = "yahoo"
	userAgent    = "Mozilla/5.0 (compatible; stockpulse/1.0)"
)

// Client reads candles from the chart API and resolves companies through the
// search API.
type Client struct {
	baseURL string
	http    *xhttp.Client
}

var (
	_ drepo.CandleSource    = (*Client)(nil)
	_ drepo.CompanySearcher = (*Client)(nil)
)

// New creates a Yahoo Finance client.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithUserAgent(userAgent)),
	}
}

func (c *Client) Name() string { return providerName }

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Candles returns rows for ticker between from and to, ascending by
// timestamp. Bars without a close price are skipped and an empty result is
// not an error.
func (c *Client) Candles(ctx context.Context, ticker string, interval drepo.Interval, from, to time.Time) ([]models.CandleRow, error) {
	op := "chart " + string(interval)

	var resp chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(ticker)),
		QueryParams: url.Values{
			"period1":  {strconv.FormatInt(from.Unix(), 10)},
			"period2":  {strconv.FormatInt(to.Unix(), 10)},
			"interval": {string(interval)},
		},
	}, &resp)
	if err != nil {
		return nil, models.NewUpstreamError(providerName, op, err)
	}
	if resp.Chart.Error != nil {
		return nil, models.NewUpstreamError(providerName, op, fmt.Errorf("%s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description))
	}
	if len(resp.Chart.Result) == 0 {
		return []models.CandleRow{}, nil
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []models.CandleRow{}, nil
	}
	quote := result.Indicators.Quote[0]

	rows := make([]models.CandleRow, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		cl := at(quote.Close, i)
		if cl == nil {
			continue // null bar (halt, holiday)
		}
		rows = append(rows, models.CandleRow{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      deref(at(quote.Open, i)),
			High:      deref(at(quote.High, i)),
			Low:       deref(at(quote.Low, i)),
			Close:     *cl,
			Volume:    deref(at(quote.Volume, i)),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Timestamp.Before(rows[j].Timestamp) })
	return rows, nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

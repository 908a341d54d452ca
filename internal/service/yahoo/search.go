package yahoo

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
)

// MinQueryLength is the shortest query forwarded upstream.
const MinQueryLength = 2

var listedSuffixes = []string{".NS", ".BO"}

type searchResponse struct {
	Quotes []struct {
		Symbol         string `json:"symbol"`
		ShortName      string `json:"shortname"`
		LongName       string `json:"longname"`
		QuoteType      string `json:"quoteType"`
		TypeDisp       string `json:"typeDisp"`
		IsYahooFinance bool   `json:"isYahooFinance"`
	} `json:"quotes"`
}

// SearchCompanies returns equities listed on NSE or BSE matching query.
// Queries shorter than MinQueryLength return an empty list without a call.
func (c *Client) SearchCompanies(ctx context.Context, query string, limit int) ([]models.Company, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return []models.Company{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	var resp searchResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v1/finance/search",
		QueryParams: url.Values{
			"q":           {query},
			"quotesCount": {strconv.Itoa(limit)},
			"newsCount":   {"0"},
		},
	}, &resp)
	if err != nil {
		return nil, models.NewUpstreamError(providerName, "search", err)
	}

	out := make([]models.Company, 0, limit)
	for _, q := range resp.Quotes {
		if !q.IsYahooFinance || !isEquity(q.QuoteType, q.TypeDisp) || !isListed(q.Symbol) {
			continue
		}
		name := strings.TrimSpace(q.ShortName)
		if name == "" {
			name = strings.TrimSpace(q.LongName)
		}
		symbol := strings.TrimSpace(q.Symbol)
		if name == "" || symbol == "" {
			continue
		}
		out = append(out, models.Company{Name: name, Symbol: symbol})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func isEquity(quoteType, typeDisp string) bool {
	return quoteType == "EQUITY" || typeDisp == "Equity"
}

func isListed(symbol string) bool {
	for _, s := range listedSuffixes {
		if strings.HasSuffix(symbol, s) {
			return true
		}
	}
	return false
}

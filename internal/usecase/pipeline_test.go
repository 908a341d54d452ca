package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/domain/service"
	"StockPulse/internal/repository"
	"StockPulse/internal/services/export"
	"StockPulse/internal/services/report"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
)

type cannedReasoner struct {
	out   string
	calls int
}

func (r *cannedReasoner) Name() string { return "canned" }

func (r *cannedReasoner) Complete(context.Context, string, []service.Message) (string, error) {
	r.calls++
	return r.out, nil
}

const acmeAnalysis = `{
  "news_analysis": {"sentiment_score": 0.6, "key_events": ["order win", "capacity expansion"], "impact_assessment": "positive"},
  "trade_recommendation": {"signal": "BUY", "entry_price": 150, "stop_loss": 140, "take_profit": 170, "risk_reward_ratio": 2, "confidence_score": 0.8}
}`

func dailyRising(n int) []models.CandleRow {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.CandleRow, n)
	for i := range out {
		c := 100 + float64(i)
		out[i] = models.CandleRow{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000 + float64(i),
		}
	}
	return out
}

func TestPipeline_AcmeCorpEndToEnd(t *testing.T) {
	news := &fakeNews{}
	for i := 1; i <= 3; i++ {
		news.items = append(news.items, models.NewsItem{
			Title:  fmt.Sprintf("Acme headline %d", i),
			URL:    fmt.Sprintf("https://news.example/acme/%d", i),
			Source: "Example Wire",
		})
	}
	candles := &fakeCandles{rows: map[drepo.Interval][]models.CandleRow{
		drepo.Interval1d: dailyRising(50),
	}}
	ingestion := NewIngestion(news, candles,
		[]drepo.IntervalSpec{{Interval: drepo.Interval1d, Lookback: 120 * 24 * time.Hour}},
		0, 0, metrics.Nop{}, logger.NewNop())
	reasoner := &cannedReasoner{out: acmeAnalysis}
	dir := t.TempDir()
	store := repository.NewMemoryRunStore()

	svc := NewRunService(store, ingestion, report.New(reasoner, logger.NewNop()), export.New(dir),
		&fakeEvents{}, metrics.Nop{}, logger.NewNop(), RunConfig{})

	res, err := svc.Run(context.Background(), models.RunRequest{Company: "Acme Corp", Ticker: "ACME.NS"})
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", res.Company)
	assert.Equal(t, "ACME.NS", res.Ticker)
	assert.False(t, res.Cached)
	assert.Len(t, res.News, 3)
	assert.True(t, strings.HasSuffix(res.DownloadURL, "?company=Acme%20Corp"), res.DownloadURL)

	require.Equal(t, []string{"1d"}, res.Candles.Intervals())
	series, ok := res.Candles.Get("1d")
	require.True(t, ok)
	require.Len(t, series.Rows, 50)
	last := series.Rows[len(series.Rows)-1]
	require.NotNil(t, last.EMA20)
	require.NotNil(t, last.EMA50)
	require.NotNil(t, last.RSI14)
	assert.Equal(t, models.CrossBullish, last.Cross)
	assert.Greater(t, *last.EMA20, *last.EMA50)
	assert.Greater(t, *last.RSI14, 50.0)

	assert.Equal(t, models.AnalysisOK, res.Analysis.Status)
	assert.Nil(t, res.Analysis.Error)
	require.NotNil(t, res.Analysis.TechnicalAnalysis)
	require.NotNil(t, res.Analysis.NewsAnalysis)
	require.NotNil(t, res.Analysis.TradeRecommendation)
	assert.Equal(t, "BUY", res.Analysis.TradeRecommendation.Signal)
	assert.Equal(t, 1, reasoner.calls)

	_, err = os.Stat(export.New(dir).Path("Acme Corp"))
	assert.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	// a second request within the staleness window is served from the store
	again, err := svc.Run(context.Background(), models.RunRequest{Company: "Acme Corp", Ticker: "ACME.NS"})
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, 1, reasoner.calls)
}

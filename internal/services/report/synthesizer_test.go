package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
	"StockPulse/internal/services/indicators"
	"StockPulse/pkg/logger"
)

type fakeReasoner struct {
	out   string
	err   error
	calls int
	sys   string
	msgs  []service.Message
}

func (f *fakeReasoner) Name() string { return "fake" }

func (f *fakeReasoner) Complete(_ context.Context, system string, messages []service.Message) (string, error) {
	f.calls++
	f.sys = system
	f.msgs = messages
	return f.out, f.err
}

func sampleCandles() models.CandleSeriesSet {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.CandleRow, 100)
	for i := range rows {
		c := 100 + float64(i)
		rows[i] = models.CandleRow{Timestamp: base.Add(time.Duration(i) * time.Hour), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10}
	}
	return models.CandleSeriesSet{
		{Interval: "1h", Rows: indicators.Enrich(rows)},
		{Interval: "1d"},
	}
}

const fullPayload = `{
  "news_analysis": {"sentiment_score": 0.4, "key_events": ["earnings beat"], "impact_assessment": "positive"},
  "trade_recommendation": {"signal": "BUY", "entry_price": 199, "stop_loss": 190, "take_profit": 215, "risk_reward_ratio": 1.8, "confidence_score": 0.7}
}`

func TestSynthesize_OK(t *testing.T) {
	r := &fakeReasoner{out: "Here you go:\n" + fullPayload + "\n"}
	s := New(r, logger.NewNop())

	a := s.Synthesize(context.Background(), "Infosys", "INFY.NS", []models.NewsItem{{Title: "t", Source: "s"}}, sampleCandles())

	assert.Equal(t, 1, r.calls)
	assert.Equal(t, models.AnalysisOK, a.Status)
	require.NotNil(t, a.TechnicalAnalysis)
	assert.Equal(t, indicators.SentimentBullish, a.TechnicalAnalysis.OverallSentiment)
	assert.Contains(t, a.TechnicalAnalysis.Timeframes, "1h")
	assert.Equal(t, "BUY", a.TradeRecommendation.Signal)
	assert.Equal(t, []string{"earnings beat"}, a.NewsAnalysis.KeyEvents)
	assert.Nil(t, a.Error)

	require.Len(t, r.msgs, 2)
	assert.Equal(t, "assistant", r.msgs[0].Role)
	assert.Contains(t, r.msgs[0].Content, `"technical_analysis"`)
	assert.Equal(t, "user", r.msgs[1].Role)
	assert.True(t, strings.HasPrefix(r.msgs[1].Content, "Company: Infosys (INFY.NS)\nNews:\n1. t [s]"))
	assert.Contains(t, r.sys, "Return only valid JSON")
}

func TestSynthesize_NotJSON(t *testing.T) {
	r := &fakeReasoner{out: "I cannot help with that."}
	a := New(r, logger.NewNop()).Synthesize(context.Background(), "X", "X", nil, sampleCandles())

	assert.Equal(t, models.AnalysisDegraded, a.Status)
	require.NotNil(t, a.Error)
	assert.Equal(t, models.ErrKindSynthesis, a.Error.Kind)
	assert.Equal(t, "I cannot help with that.", a.Error.Raw)
	assert.NotNil(t, a.TechnicalAnalysis)
}

func TestSynthesize_MissingFacets(t *testing.T) {
	r := &fakeReasoner{out: `{"news_analysis": {"sentiment_score": 0.1, "key_events": [], "impact_assessment": "flat"}}`}
	a := New(r, logger.NewNop()).Synthesize(context.Background(), "X", "X", nil, sampleCandles())

	assert.Equal(t, models.AnalysisDegraded, a.Status)
	assert.Equal(t, models.ErrKindMissingFacets, a.Error.Kind)
	assert.NotNil(t, a.NewsAnalysis)
	assert.Nil(t, a.TradeRecommendation)
}

func TestSynthesize_MistypedFacetKeepsOthers(t *testing.T) {
	r := &fakeReasoner{out: `{
  "news_analysis": {"sentiment_score": 0.3, "key_events": ["order win"], "impact_assessment": "positive"},
  "trade_recommendation": {"signal": "BUY", "entry_price": "2450.5", "stop_loss": 2400}
}`}
	a := New(r, logger.NewNop()).Synthesize(context.Background(), "X", "X", nil, sampleCandles())

	assert.Equal(t, models.AnalysisDegraded, a.Status)
	require.NotNil(t, a.NewsAnalysis)
	assert.Equal(t, []string{"order win"}, a.NewsAnalysis.KeyEvents)
	assert.Nil(t, a.TradeRecommendation)
	require.NotNil(t, a.Error)
	assert.Equal(t, models.ErrKindMissingFacets, a.Error.Kind)
	assert.Contains(t, a.Error.Message, "invalid trade_recommendation")
	assert.NotEmpty(t, a.Error.Raw)
}

func TestSynthesize_NullFacetIsMissing(t *testing.T) {
	r := &fakeReasoner{out: `{"news_analysis": null, "trade_recommendation": {"signal": "HOLD"}}`}
	a := New(r, logger.NewNop()).Synthesize(context.Background(), "X", "X", nil, sampleCandles())

	assert.Equal(t, models.AnalysisDegraded, a.Status)
	assert.Nil(t, a.NewsAnalysis)
	require.NotNil(t, a.TradeRecommendation)
	assert.Equal(t, "HOLD", a.TradeRecommendation.Signal)
	assert.Contains(t, a.Error.Message, "missing news_analysis")
}

func TestSynthesize_ReasonerFailure(t *testing.T) {
	for _, r := range []*fakeReasoner{
		{err: models.NewUpstreamError("fake", "complete", errors.New("timeout"))},
		{out: "   "},
	} {
		a := New(r, logger.NewNop()).Synthesize(context.Background(), "X", "X", nil, sampleCandles())
		assert.Equal(t, models.AnalysisFailed, a.Status)
		assert.Equal(t, models.ErrKindUpstream, a.Error.Kind)
		assert.NotNil(t, a.TechnicalAnalysis)
		assert.Nil(t, a.TradeRecommendation)
	}
}

func TestSynthesize_KeepsModelTechnical(t *testing.T) {
	r := &fakeReasoner{out: `{"technical_analysis":{"timeframes":{"1d":{"close":5,"ema_20":4,"ema_50":3,"rsi":60}},"overall_sentiment":"bullish"},` + fullPayload[1:]}
	a := New(r, logger.NewNop()).Synthesize(context.Background(), "X", "X", nil, sampleCandles())

	assert.Equal(t, models.AnalysisOK, a.Status)
	assert.Equal(t, 5.0, a.TechnicalAnalysis.Timeframes["1d"].Close)
}

func TestExtract(t *testing.T) {
	assert.Equal(t, `{"a":{"b":1}}`, Extract("prefix {\"a\":{\"b\":1}}  \n"))
	assert.Equal(t, "no braces", Extract("no braces"))
	assert.Equal(t, "{x} trailing", Extract("{x} trailing"))
}

func TestNewsDigest(t *testing.T) {
	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	news := make([]models.NewsItem, 12)
	for i := range news {
		news[i] = models.NewsItem{Title: "t", Source: "src", Snippet: "snip"}
	}
	news[0].PublishedAt = &ts

	d := NewsDigest(news)
	lines := strings.Split(d, "\n")
	assert.Len(t, lines, 30)
	assert.Equal(t, "1. t [src]", lines[0])
	assert.Equal(t, "   snip", lines[1])
	assert.Equal(t, "   Published: 2024-02-03T04:05:06Z", lines[2])
	assert.Equal(t, "   Published: N/A", lines[5])
	assert.True(t, strings.HasPrefix(lines[27], "10. "))
}

func TestCandleDigest_Tail(t *testing.T) {
	d := CandleDigest(sampleCandles())
	blocks := strings.Split(d, "\n[1d]")
	require.Len(t, blocks, 2)
	// header plus 80 rows
	assert.Len(t, strings.Split(blocks[0], "\n"), 82)
}

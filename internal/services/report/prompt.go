package report

import (
	"fmt"
	"strconv"
	"strings"

	"StockPulse/internal/domain/models"
)

const (
	newsDigestSize = 10
	candleTailSize = 80
	notAvailable   = "N/A"
)

const systemPrompt = `You are a quantitative trading analyst who combines technical analysis with news sentiment.
The previous assistant message holds a technical_analysis JSON computed by a trusted indicator service. The user message holds a news digest and recent candles.
Respond with one JSON object with exactly these keys:
- technical_analysis: the object you were given, unchanged
- news_analysis: { sentiment_score (float, -1 to 1), key_events (array of strings), impact_assessment (string) }
- trade_recommendation: { signal (BUY, SELL or HOLD), entry_price, stop_loss, take_profit, risk_reward_ratio, confidence_score (0 to 1) }

Return only valid JSON. No prose, no markdown, no code fences.`

// NewsDigest renders the first ten articles as numbered entries.
func NewsDigest(news []models.NewsItem) string {
	if len(news) > newsDigestSize {
		news = news[:newsDigestSize]
	}
	var sb strings.Builder
	for i, n := range news {
		published := notAvailable
		if n.PublishedAt != nil {
			published = n.PublishedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. %s [%s]\n   %s\n   Published: %s", i+1, n.Title, n.Source, n.Snippet, published)
	}
	return sb.String()
}

// CandleDigest renders the last eighty rows of every interval as CSV blocks.
func CandleDigest(candles models.CandleSeriesSet) string {
	var sb strings.Builder
	for i, cs := range candles.Tail(candleTailSize) {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "[%s]\ntimestamp,open,high,low,close,volume,ema20,ema50,rsi14,cross", cs.Interval)
		for _, r := range cs.Rows {
			sb.WriteByte('\n')
			sb.WriteString(strings.Join([]string{
				r.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
				num(r.Open), num(r.High), num(r.Low), num(r.Close), num(r.Volume),
				optNum(r.EMA20), optNum(r.EMA50), optNum(r.RSI14),
				string(r.Cross),
			}, ","))
		}
	}
	return sb.String()
}

// UserPrompt is the single user turn sent to the reasoner.
func UserPrompt(company, ticker string, news []models.NewsItem, candles models.CandleSeriesSet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Company: %s (%s)\nNews:\n%s\n", company, ticker, NewsDigest(news))
	if len(candles) > 0 {
		fmt.Fprintf(&sb, "\nRecent candles:\n%s\n", CandleDigest(candles))
	}
	sb.WriteString("\nUsing the technical_analysis above, produce the JSON described in the system message. Return only valid JSON.")
	return sb.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optNum(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

package indicators

import (
	"StockPulse/internal/domain/models"
)

// Sentiment labels produced by Summarize.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// Snapshot reports the latest indicator state of one series. ok is false for
// an empty series.
func Snapshot(rows []models.CandleRow) (models.TimeframeSnapshot, bool) {
	if len(rows) == 0 {
		return models.TimeframeSnapshot{}, false
	}

	closes := Closes(rows)
	last := len(rows) - 1

	fast, _ := EMA(closes, emaFast)
	slow, _ := EMA(closes, emaSlow)
	rsi, _ := RSI(closes, rsiPeriod)
	macd, signal, _ := MACD(closes, macdFast, macdSlow, macdSignal)

	return models.TimeframeSnapshot{
		Close:      closes[last],
		EMA20:      fast[last],
		EMA50:      slow[last],
		RSI:        rsi[last],
		MACD:       macd[last],
		MACDSignal: signal[last],
		Cross:      CrossOf(fast[last], slow[last]),
		Rows:       len(rows),
	}, true
}

// Summarize builds the locally computed technical facet. Overall sentiment is
// a majority vote of the per-interval crosses; ties read bearish and a set
// with no data reads neutral.
func Summarize(set models.CandleSeriesSet) *models.TechnicalAnalysis {
	ta := &models.TechnicalAnalysis{
		Timeframes:       make(map[string]models.TimeframeSnapshot, len(set)),
		OverallSentiment: SentimentNeutral,
	}

	bullish, bearish := 0, 0
	for _, cs := range set {
		snap, ok := Snapshot(cs.Rows)
		if !ok {
			continue
		}
		ta.Timeframes[cs.Interval] = snap
		if snap.Cross == models.CrossBullish {
			bullish++
		} else {
			bearish++
		}
	}

	switch {
	case bullish+bearish == 0:
	case bullish > bearish:
		ta.OverallSentiment = SentimentBullish
	default:
		ta.OverallSentiment = SentimentBearish
	}
	return ta
}

package models

import "time"

// Cross labels the EMA20/EMA50 relationship at a single row.
type Cross string

const (
	CrossBullish Cross = "bullish"
	CrossBearish Cross = "bearish"
)

// CandleRow is one OHLCV sample plus the optional derived indicator fields.
type CandleRow struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	EMA20     *float64  `json:"ema_20,omitempty"`
	EMA50     *float64  `json:"ema_50,omitempty"`
	RSI14     *float64  `json:"rsi_14,omitempty"`
	Cross     Cross     `json:"cross,omitempty"`
}

// CandleSeries is the ordered (timestamp ascending) sequence for one interval.
type CandleSeries struct {
	Interval string      `json:"interval"`
	Rows     []CandleRow `json:"rows"`
}

// CandleSeriesSet holds exactly one series per configured interval, in
// configuration order. Empty series are valid.
type CandleSeriesSet []CandleSeries

// Get returns the series for interval.
func (s CandleSeriesSet) Get(interval string) (CandleSeries, bool) {
	for _, cs := range s {
		if cs.Interval == interval {
			return cs, true
		}
	}
	return CandleSeries{}, false
}

// Intervals lists the interval labels in order.
func (s CandleSeriesSet) Intervals() []string {
	out := make([]string, 0, len(s))
	for _, cs := range s {
		out = append(out, cs.Interval)
	}
	return out
}

// Tail returns a copy of the set keeping at most n trailing rows per interval.
func (s CandleSeriesSet) Tail(n int) CandleSeriesSet {
	out := make(CandleSeriesSet, 0, len(s))
	for _, cs := range s {
		rows := cs.Rows
		if n >= 0 && len(rows) > n {
			rows = rows[len(rows)-n:]
		}
		cp := make([]CandleRow, len(rows))
		copy(cp, rows)
		out = append(out, CandleSeries{Interval: cs.Interval, Rows: cp})
	}
	return out
}

package indicators

import (
	"errors"
	"math"

	"StockPulse/internal/domain/models"
)

// ErrInvalidSpan is returned for EMA spans and RSI periods below 1.
var ErrInvalidSpan = errors.New("indicators: span must be >= 1")

const (
	emaFast   = 20
	emaSlow   = 50
	rsiPeriod = 14

	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9

	// rsiEpsilon replaces a zero average loss.
	rsiEpsilon = 1e-6
)

// EMA computes the exponential moving average with k = 2/(span+1), seeded
// with the first value. The output has the same length as values.
func EMA(values []float64, span int) ([]float64, error) {
	if span < 1 {
		return nil, ErrInvalidSpan
	}
	return ewm(values, 2/float64(span+1)), nil
}

// ewm is a recursive exponentially weighted mean seeded with values[0].
func ewm(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI computes the relative strength index using Wilder smoothing
// (alpha = 1/period). The delta at index 0 is zero. A zero average loss
// resolves to 100, so a flat series reads 100 throughout.
func RSI(closes []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, ErrInvalidSpan
	}
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	alpha := 1 / float64(period)
	avgGain := ewm(gains, alpha)
	avgLoss := ewm(losses, alpha)

	out := make([]float64, n)
	for i := range out {
		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain[i] / math.Max(avgLoss[i], rsiEpsilon)
		out[i] = clamp(100-100/(1+rs), 0, 100)
	}
	return out, nil
}

// MACD returns the MACD line (EMA fast minus EMA slow) and its signal line.
func MACD(closes []float64, fast, slow, signal int) ([]float64, []float64, error) {
	f, err := EMA(closes, fast)
	if err != nil {
		return nil, nil, err
	}
	s, err := EMA(closes, slow)
	if err != nil {
		return nil, nil, err
	}
	line := make([]float64, len(closes))
	for i := range line {
		line[i] = f[i] - s[i]
	}
	sig, err := EMA(line, signal)
	if err != nil {
		return nil, nil, err
	}
	return line, sig, nil
}

// Enrich returns a copy of rows with EMA20, EMA50, RSI14 and the cross label
// attached. Order and length are preserved.
func Enrich(rows []models.CandleRow) []models.CandleRow {
	out := make([]models.CandleRow, len(rows))
	copy(out, rows)
	if len(rows) == 0 {
		return out
	}

	closes := Closes(rows)
	fast := ewm(closes, 2/float64(emaFast+1))
	slow := ewm(closes, 2/float64(emaSlow+1))
	rsi, _ := RSI(closes, rsiPeriod)

	for i := range out {
		f, s, r := fast[i], slow[i], rsi[i]
		out[i].EMA20 = &f
		out[i].EMA50 = &s
		out[i].RSI14 = &r
		out[i].Cross = CrossOf(f, s)
	}
	return out
}

// CrossOf labels bullish iff fast is strictly above slow.
func CrossOf(fast, slow float64) models.Cross {
	if fast > slow {
		return models.CrossBullish
	}
	return models.CrossBearish
}

// Closes extracts close prices.
func Closes(rows []models.CandleRow) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Close
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

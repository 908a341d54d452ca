package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
)

func series(closes ...float64) []models.CandleRow {
	start := time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC)
	rows := make([]models.CandleRow, len(closes))
	for i, c := range closes {
		rows[i] = models.CandleRow{Timestamp: start.Add(time.Duration(i) * time.Hour), Open: c, High: c, Low: c, Close: c}
	}
	return rows
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestEMA(t *testing.T) {
	got, err := EMA([]float64{1, 2, 3}, 3)
	require.NoError(t, err)
	// k = 0.5
	assert.InDeltaSlice(t, []float64{1, 1.5, 2.25}, got, 1e-9)

	same, err := EMA([]float64{4, 8}, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{4, 8}, same, 1e-9)

	empty, err := EMA(nil, 20)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = EMA([]float64{1}, 0)
	assert.ErrorIs(t, err, ErrInvalidSpan)
}

func TestRSI_FlatSeriesIsHundred(t *testing.T) {
	got, err := RSI([]float64{10, 10, 10, 10, 10}, 14)
	require.NoError(t, err)
	for _, v := range got {
		assert.Equal(t, 100.0, v)
	}
}

func TestRSI_Bounds(t *testing.T) {
	up, err := RSI(ramp(40, 100, 1), 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, up[len(up)-1])

	down, err := RSI(ramp(40, 100, -1), 14)
	require.NoError(t, err)
	assert.Less(t, down[len(down)-1], 1.0)

	mixed, err := RSI([]float64{10, 12, 11, 13, 9, 14, 8, 15}, 3)
	require.NoError(t, err)
	for _, v := range mixed {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
	assert.Len(t, mixed, 8)
}

func TestRSI_KnownValue(t *testing.T) {
	// gains [0,2,0], losses [0,0,1], alpha 0.5
	// avgGain [0,1,0.5], avgLoss [0,0,0.5] => rs 1 at the end
	got, err := RSI([]float64{10, 12, 11}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, got[2], 1e-9)
	assert.Equal(t, 100.0, got[1])
}

func TestMACD(t *testing.T) {
	line, signal, err := MACD(ramp(60, 100, 1), 12, 26, 9)
	require.NoError(t, err)
	require.Len(t, line, 60)
	require.Len(t, signal, 60)
	assert.Equal(t, 0.0, line[0])
	assert.Greater(t, line[59], 0.0)
}

func TestEnrich(t *testing.T) {
	rows := series(ramp(60, 100, 1)...)
	out := Enrich(rows)

	require.Len(t, out, len(rows))
	for i := range out {
		assert.Equal(t, rows[i].Timestamp, out[i].Timestamp)
		require.NotNil(t, out[i].EMA20)
		require.NotNil(t, out[i].EMA50)
		require.NotNil(t, out[i].RSI14)
	}
	assert.Equal(t, models.CrossBearish, out[0].Cross, "equal EMAs are not bullish")
	assert.Equal(t, models.CrossBullish, out[59].Cross)
	assert.Nil(t, rows[0].EMA20, "input must not be mutated")

	assert.Empty(t, Enrich(nil))
}

func TestEnrich_Downtrend(t *testing.T) {
	out := Enrich(series(ramp(60, 200, -1)...))
	assert.Equal(t, models.CrossBearish, out[59].Cross)
	assert.Less(t, *out[59].RSI14, 50.0)
}

func TestSummarize(t *testing.T) {
	set := models.CandleSeriesSet{
		{Interval: "15m", Rows: Enrich(series(ramp(60, 100, 1)...))},
		{Interval: "1h", Rows: Enrich(series(ramp(60, 200, -1)...))},
		{Interval: "1d", Rows: nil},
	}

	ta := Summarize(set)
	require.Len(t, ta.Timeframes, 2)
	assert.Equal(t, models.CrossBullish, ta.Timeframes["15m"].Cross)
	assert.Equal(t, 60, ta.Timeframes["1h"].Rows)
	assert.Equal(t, SentimentBearish, ta.OverallSentiment, "ties read bearish")

	set[2].Rows = Enrich(series(ramp(60, 50, 2)...))
	assert.Equal(t, SentimentBullish, Summarize(set).OverallSentiment)

	assert.Equal(t, SentimentNeutral, Summarize(nil).OverallSentiment)
}

func TestSnapshot_Empty(t *testing.T) {
	_, ok := Snapshot(nil)
	assert.False(t, ok)
}

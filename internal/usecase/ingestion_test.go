package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
)

func rowsFrom(closes ...float64) []models.CandleRow {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.CandleRow, len(closes))
	for i, c := range closes {
		out[i] = models.CandleRow{Timestamp: base.Add(time.Duration(i) * time.Hour), Close: c}
	}
	return out
}

func TestIngestion_FetchCandles(t *testing.T) {
	src := &fakeCandles{rows: map[drepo.Interval][]models.CandleRow{
		drepo.Interval15m: rowsFrom(1, 2, 3),
		drepo.Interval1d:  rowsFrom(5),
	}}
	in := NewIngestion(&fakeNews{}, src, nil, 0, 20*time.Millisecond, metrics.Nop{}, logger.NewNop())

	set, err := in.FetchCandles(context.Background(), "INFY.NS")
	require.NoError(t, err)

	assert.Equal(t, []string{"15m", "1h", "1d"}, set.Intervals())
	s15, _ := set.Get("15m")
	require.Len(t, s15.Rows, 3)
	require.NotNil(t, s15.Rows[2].EMA20)
	assert.Equal(t, models.CrossBullish, s15.Rows[2].Cross)
	s1h, _ := set.Get("1h")
	assert.Empty(t, s1h.Rows)

	// pacer spaces the three calls
	require.Len(t, src.calls, 3)
	first, last := src.calls[0], src.calls[0]
	for _, c := range src.calls {
		if c.Before(first) {
			first = c
		}
		if c.After(last) {
			last = c
		}
	}
	assert.GreaterOrEqual(t, last.Sub(first), 35*time.Millisecond)
}

func TestIngestion_FetchCandlesError(t *testing.T) {
	src := &fakeCandles{err: models.NewUpstreamError("yahoo", "chart", errors.New("boom"))}
	in := NewIngestion(&fakeNews{}, src, nil, 0, 0, metrics.Nop{}, logger.NewNop())

	_, err := in.FetchCandles(context.Background(), "X")
	assert.True(t, models.IsUpstream(err))
}

func TestIngestion_Gather(t *testing.T) {
	news := &fakeNews{items: make([]models.NewsItem, 20)}
	in := NewIngestion(news, &fakeCandles{}, nil, 30*24*time.Hour, 0, metrics.Nop{}, logger.NewNop())
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	in.now = func() time.Time { return fixed }

	items, candles, err := in.Gather(context.Background(), "Acme", "ACME.NS", 15)
	require.NoError(t, err)
	assert.Len(t, items, 15)
	assert.Len(t, candles, 3)
	assert.Equal(t, fixed.Add(-30*24*time.Hour), news.since)
}

func TestIngestion_GatherNewsError(t *testing.T) {
	in := NewIngestion(&fakeNews{err: errors.New("down")}, &fakeCandles{}, nil, 0, 0, metrics.Nop{}, logger.NewNop())
	_, _, err := in.Gather(context.Background(), "Acme", "ACME", 15)
	assert.Error(t, err)
}

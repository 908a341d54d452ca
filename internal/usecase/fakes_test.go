package usecase

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
)

type fakeNews struct {
	items []models.NewsItem
	err   error
	since time.Time
}

func (f *fakeNews) Name() string { return "fake-news" }

func (f *fakeNews) Search(_ context.Context, _ string, since time.Time, limit int) ([]models.NewsItem, error) {
	f.since = since
	if f.err != nil {
		return nil, f.err
	}
	if len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

type fakeCandles struct {
	mu    sync.Mutex
	calls []time.Time
	rows  map[drepo.Interval][]models.CandleRow
	err   error
}

func (f *fakeCandles) Name() string { return "fake-candles" }

func (f *fakeCandles) Candles(_ context.Context, _ string, iv drepo.Interval, _, _ time.Time) ([]models.CandleRow, error) {
	f.mu.Lock()
	f.calls = append(f.calls, time.Now())
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[iv], nil
}

type fakeGatherer struct {
	calls   atomic.Int32
	delay   time.Duration
	news    []models.NewsItem
	candles models.CandleSeriesSet
	err     error
}

func (f *fakeGatherer) Gather(ctx context.Context, _, _ string, _ int) ([]models.NewsItem, models.CandleSeriesSet, error) {
	f.calls.Add(1)
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	return f.news, f.candles, f.err
}

type fakeSynth struct {
	status models.AnalysisStatus
}

func (f *fakeSynth) Synthesize(context.Context, string, string, []models.NewsItem, models.CandleSeriesSet) models.Analysis {
	return models.Analysis{Status: f.status, TechnicalAnalysis: &models.TechnicalAnalysis{OverallSentiment: "neutral"}}
}

type fakeExporter struct {
	dir string
}

func (f *fakeExporter) Path(company string) string {
	return filepath.Join(f.dir, company+".xlsx")
}

func (f *fakeExporter) Export(company string, _ []models.NewsItem, _ models.CandleSeriesSet) (string, error) {
	return f.Path(company), writeFile(f.Path(company))
}

type fakeEvents struct {
	mu     sync.Mutex
	events []models.RunCompletedEvent
}

func (f *fakeEvents) PublishRunCompleted(_ context.Context, ev models.RunCompletedEvent) error {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
	return nil
}

func (f *fakeEvents) Close() error { return nil }

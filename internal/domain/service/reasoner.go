package service

import (
	"context"

	"StockPulse/internal/domain/models"
)

// Message is one chat turn sent to a reasoning service.
type Message struct {
	Role    string // "assistant" or "user"
	Content string
}

// Reasoner invokes an external reasoning model once and returns its raw text.
type Reasoner interface {
	Name() string
	Complete(ctx context.Context, system string, messages []Message) (string, error)
}

// Synthesizer turns gathered data into a tagged analysis.
type Synthesizer interface {
	Synthesize(ctx context.Context, company, ticker string, news []models.NewsItem, candles models.CandleSeriesSet) models.Analysis
}

// Exporter materializes a spreadsheet artifact for a company.
type Exporter interface {
	Export(company string, news []models.NewsItem, candles models.CandleSeriesSet) (string, error)
	Path(company string) string
}

package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// NewsSource returns articles mentioning a company published after since.
type NewsSource interface {
	Name() string
	Search(ctx context.Context, company string, since time.Time, limit int) ([]models.NewsItem, error)
}

// CandleSource returns raw OHLCV rows for one interval between from and to.
type CandleSource interface {
	Name() string
	Candles(ctx context.Context, ticker string, interval Interval, from, to time.Time) ([]models.CandleRow, error)
}

// CompanySearcher resolves free text to listed companies.
type CompanySearcher interface {
	SearchCompanies(ctx context.Context, query string, limit int) ([]models.Company, error)
}

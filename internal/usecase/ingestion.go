package usecase

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/services/indicators"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

// Ingestion gathers news and multi-interval candles for one company.
type Ingestion struct {
	news      drepo.NewsSource
	candles   drepo.CandleSource
	intervals []drepo.IntervalSpec
	lookback  time.Duration
	pacer     *rate.Limiter
	metrics   drepo.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewIngestion creates the orchestrator. Candle calls share one pacer that
// allows a call per pacing interval across all requests.
func NewIngestion(
	news drepo.NewsSource,
	candles drepo.CandleSource,
	intervals []drepo.IntervalSpec,
	newsLookback time.Duration,
	pacing time.Duration,
	metrics drepo.Metrics,
	log *logger.Logger,
) *Ingestion {
	if len(intervals) == 0 {
		intervals = drepo.DefaultIntervals()
	}
	if newsLookback <= 0 {
		newsLookback = 30 * 24 * time.Hour
	}
	limit := rate.Inf
	if pacing > 0 {
		limit = rate.Every(pacing)
	}
	return &Ingestion{
		news:      news,
		candles:   candles,
		intervals: intervals,
		lookback:  newsLookback,
		pacer:     rate.NewLimiter(limit, 1),
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// FetchNews returns up to limit articles from the last lookback window.
func (in *Ingestion) FetchNews(ctx context.Context, company string, limit int) ([]models.NewsItem, error) {
	start := time.Now()
	items, err := in.news.Search(ctx, company, in.now().Add(-in.lookback), limit)
	in.metrics.RecordStage("news", time.Since(start).Seconds())
	if err != nil {
		in.metrics.RecordError("news")
		return nil, err
	}
	if items == nil {
		items = []models.NewsItem{}
	}
	return items, nil
}

// FetchCandles returns one enriched series per configured interval, in
// configuration order.
func (in *Ingestion) FetchCandles(ctx context.Context, ticker string) (models.CandleSeriesSet, error) {
	start := time.Now()
	defer func() { in.metrics.RecordStage("candles", time.Since(start).Seconds()) }()

	out := make(models.CandleSeriesSet, len(in.intervals))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range in.intervals {
		i, spec := i, spec
		g.Go(func() error {
			if err := in.pacer.Wait(gctx); err != nil {
				return models.NewUpstreamError(in.candles.Name(), "pace "+string(spec.Interval), err)
			}
			from, to := util.Window(in.now(), spec.Lookback)
			rows, err := in.candles.Candles(gctx, ticker, spec.Interval, from, to)
			if err != nil {
				return err
			}
			out[i] = models.CandleSeries{Interval: string(spec.Interval), Rows: indicators.Enrich(rows)}
			in.log.Debug("candles fetched",
				logger.String("ticker", ticker),
				logger.String("interval", string(spec.Interval)),
				logger.Int("rows", len(rows)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		in.metrics.RecordError("candles")
		return nil, err
	}
	return out, nil
}

// Gather fetches news and candles concurrently.
func (in *Ingestion) Gather(ctx context.Context, company, ticker string, newsLimit int) ([]models.NewsItem, models.CandleSeriesSet, error) {
	var (
		news    []models.NewsItem
		candles models.CandleSeriesSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		news, err = in.FetchNews(gctx, company, newsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		candles, err = in.FetchCandles(gctx, ticker)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return news, candles, nil
}

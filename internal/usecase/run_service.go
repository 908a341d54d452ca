package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/domain/service"
	"StockPulse/pkg/logger"
)

const (
	downloadPath      = "/api/download"
	defaultRunTimeout = 170 * time.Second
)

// Gatherer collects the raw inputs of a run.
type Gatherer interface {
	Gather(ctx context.Context, company, ticker string, newsLimit int) ([]models.NewsItem, models.CandleSeriesSet, error)
}

// RunConfig tunes caching and persistence.
type RunConfig struct {
	Staleness       time.Duration
	PersistDegraded bool
	CandleRows      int
	NewsLimit       int
	Provider        string
	// Timeout bounds one pipeline execution, independent of caller contexts.
	Timeout time.Duration
}

// RunService serves run requests from the cache or the full pipeline and
// owns the run lifecycle (persist, evict, announce).
type RunService struct {
	store    drepo.RunStore
	gather   Gatherer
	synth    service.Synthesizer
	exporter service.Exporter
	events   drepo.EventPublisher
	metrics  drepo.Metrics
	log      *logger.Logger
	cfg      RunConfig

	group singleflight.Group
	now   func() time.Time
	newID func() string
}

// NewRunService wires the lifecycle manager. events may be nil.
func NewRunService(
	store drepo.RunStore,
	gather Gatherer,
	synth service.Synthesizer,
	exporter service.Exporter,
	events drepo.EventPublisher,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg RunConfig,
) *RunService {
	if cfg.Staleness <= 0 {
		cfg.Staleness = 7 * 24 * time.Hour
	}
	if cfg.CandleRows <= 0 {
		cfg.CandleRows = 300
	}
	if cfg.NewsLimit <= 0 {
		cfg.NewsLimit = 15
	}
	if cfg.Provider == "" {
		cfg.Provider = "yahoo"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRunTimeout
	}
	return &RunService{
		store:    store,
		gather:   gather,
		synth:    synth,
		exporter: exporter,
		events:   events,
		metrics:  metrics,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// DownloadURL is the relative download link for company.
func DownloadURL(company string) string {
	return downloadPath + "?company=" + strings.ReplaceAll(url.QueryEscape(company), "+", "%20")
}

// Run returns a fresh cached run for the company or executes the pipeline.
// Concurrent misses for the same company in this process share one execution.
func (s *RunService) Run(ctx context.Context, req models.RunRequest) (*models.RunResult, error) {
	req.Normalize()
	if req.Company == "" {
		return nil, &models.ValidationError{Field: "company", Message: "company is required"}
	}

	// the shared execution outlives any single caller
	ch := s.group.DoChan(req.Company, func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Timeout)
		defer cancel()
		return s.run(sctx, req.Company, req.Ticker)
	})

	var out singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out = <-ch:
	}
	if out.Err != nil {
		return nil, out.Err
	}
	// callers sharing an execution may have asked with different tickers
	res := *out.Val.(*models.RunResult)
	res.Ticker = req.Ticker
	return &res, nil
}

func (s *RunService) run(ctx context.Context, company, ticker string) (*models.RunResult, error) {
	now := s.now()

	cached, err := s.store.FindFresh(ctx, company, now.Add(-s.cfg.Staleness))
	switch {
	case err == nil:
		s.metrics.RecordCacheLookup(true)
		s.log.Info("serving cached run",
			logger.String("company", company),
			logger.String("run_id", cached.ID),
			logger.Duration("age", now.Sub(cached.CreatedAt)),
		)
		return &models.RunResult{
			Company:     company,
			Ticker:      ticker,
			News:        cached.News,
			Candles:     cached.Candles,
			Analysis:    cached.Analysis,
			DownloadURL: DownloadURL(company),
			Cached:      true,
		}, nil
	case errors.Is(err, models.ErrRunNotFound):
		s.metrics.RecordCacheLookup(false)
	default:
		s.metrics.RecordCacheLookup(false)
		s.metrics.RecordError("store_lookup")
		s.log.Warn("fresh run lookup failed, running pipeline",
			logger.String("company", company),
			logger.Error(err),
		)
	}

	return s.execute(ctx, company, ticker, now)
}

func (s *RunService) execute(ctx context.Context, company, ticker string, now time.Time) (*models.RunResult, error) {
	start := time.Now()
	news, candles, err := s.gather.Gather(ctx, company, ticker, s.cfg.NewsLimit)
	if err != nil {
		return nil, fmt.Errorf("gather %s: %w", company, err)
	}

	exportStart := time.Now()
	path, err := s.exporter.Export(company, news, candles)
	s.metrics.RecordStage("export", time.Since(exportStart).Seconds())
	if err != nil {
		s.metrics.RecordError("export")
		return nil, fmt.Errorf("export %s: %w", company, err)
	}

	synthStart := time.Now()
	analysis := s.synth.Synthesize(ctx, company, ticker, news, candles)
	s.metrics.RecordStage("synthesis", time.Since(synthStart).Seconds())
	s.metrics.RecordSynthesis(string(analysis.Status))

	compact := candles.Tail(s.cfg.CandleRows)
	result := &models.RunResult{
		Company:     company,
		Ticker:      ticker,
		News:        news,
		Candles:     compact,
		Analysis:    analysis,
		DownloadURL: DownloadURL(company),
	}

	if !s.shouldPersist(analysis.Status) {
		s.log.Warn("run not persisted",
			logger.String("company", company),
			logger.String("status", string(analysis.Status)),
		)
		return result, nil
	}

	run := &models.Run{
		ID:           s.newID(),
		Company:      company,
		Ticker:       ticker,
		Provider:     s.cfg.Provider,
		ArtifactPath: path,
		News:         news,
		Candles:      compact,
		Analysis:     analysis,
		CreatedAt:    now,
	}
	if err := s.store.Save(ctx, run); err != nil {
		s.metrics.RecordError("persist")
		var perr *models.PersistenceError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, &models.PersistenceError{Op: "save run", Err: err}
	}

	s.evict(ctx, run)
	s.announce(ctx, run)

	s.log.Info("run completed",
		logger.String("company", company),
		logger.String("run_id", run.ID),
		logger.String("status", string(analysis.Status)),
		logger.Int("news", len(news)),
		logger.Duration("took", time.Since(start)),
	)
	return result, nil
}

func (s *RunService) shouldPersist(status models.AnalysisStatus) bool {
	switch status {
	case models.AnalysisOK:
		return true
	case models.AnalysisDegraded:
		return s.cfg.PersistDegraded
	default:
		return false
	}
}

// evict removes the company's runs that fell out of the staleness window.
// Failures are logged and swallowed.
func (s *RunService) evict(ctx context.Context, fresh *models.Run) {
	stale, err := s.store.ListOlderThan(ctx, fresh.Company, fresh.CreatedAt.Add(-s.cfg.Staleness))
	if err != nil {
		s.metrics.RecordEviction("error")
		s.log.Warn("eviction listing failed", logger.Error(&models.EvictionError{Err: err}))
		return
	}
	s.removeRuns(ctx, stale, map[string]bool{fresh.ArtifactPath: true})
}

// removeRuns deletes artifacts not listed in keep, then the records.
func (s *RunService) removeRuns(ctx context.Context, runs []models.Run, keep map[string]bool) int {
	if len(runs) == 0 {
		return 0
	}
	ids := make([]string, 0, len(runs))
	for _, r := range runs {
		ids = append(ids, r.ID)
		if r.ArtifactPath == "" || keep[r.ArtifactPath] {
			continue
		}
		if err := os.Remove(r.ArtifactPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.metrics.RecordEviction("error")
			s.log.Warn("artifact eviction failed",
				logger.Error(&models.EvictionError{RunID: r.ID, Path: r.ArtifactPath, Err: err}),
			)
		}
	}
	if err := s.store.Delete(ctx, ids...); err != nil {
		s.metrics.RecordEviction("error")
		s.log.Warn("run eviction failed",
			logger.Strings("run_ids", ids),
			logger.Error(&models.EvictionError{Err: err}),
		)
		return 0
	}
	for range ids {
		s.metrics.RecordEviction("deleted")
	}
	return len(ids)
}

func (s *RunService) announce(ctx context.Context, run *models.Run) {
	if s.events == nil {
		return
	}
	err := s.events.PublishRunCompleted(ctx, models.RunCompletedEvent{
		RunID:     run.ID,
		Company:   run.Company,
		Ticker:    run.Ticker,
		Status:    run.Analysis.Status,
		CreatedAt: run.CreatedAt,
	})
	if err != nil {
		s.metrics.RecordError("publish")
		s.log.Warn("publish run.completed failed",
			logger.String("run_id", run.ID),
			logger.Error(err),
		)
	}
}

// Sweep removes stale runs superseded by a newer run of the same company.
// The newest run of each company is kept so its workbook stays
// downloadable.
func (s *RunService) Sweep(ctx context.Context) (int, error) {
	stale, err := s.store.ListOlderThan(ctx, "", s.now().Add(-s.cfg.Staleness))
	if err != nil {
		return 0, fmt.Errorf("list stale runs: %w", err)
	}

	byCompany := make(map[string][]models.Run)
	for _, r := range stale {
		byCompany[r.Company] = append(byCompany[r.Company], r)
	}

	removed := 0
	for company, runs := range byCompany {
		latest, err := s.store.Latest(ctx, company)
		if err != nil {
			s.log.Warn("sweep lookup failed", logger.String("company", company), logger.Error(err))
			continue
		}
		superseded := runs[:0]
		for _, r := range runs {
			if r.ID != latest.ID {
				superseded = append(superseded, r)
			}
		}
		removed += s.removeRuns(ctx, superseded, map[string]bool{latest.ArtifactPath: true})
	}
	return removed, nil
}

// Artifact returns the workbook path for company, or ErrArtifactNotFound.
func (s *RunService) Artifact(company string) (string, error) {
	path := s.exporter.Path(strings.TrimSpace(company))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", models.ErrArtifactNotFound
	}
	return path, nil
}

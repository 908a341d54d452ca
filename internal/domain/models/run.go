package models

import "time"

// Run is the cached unit of work for one company. Never mutated after
// creation.
type Run struct {
	ID           string          `json:"id"`
	Company      string          `json:"company"`
	Ticker       string          `json:"ticker"`
	Provider     string          `json:"provider"`
	ArtifactPath string          `json:"artifact_path"`
	News         []NewsItem      `json:"news"`
	Candles      CandleSeriesSet `json:"candles"`
	Analysis     Analysis        `json:"analysis"`
	CreatedAt    time.Time       `json:"created_at"`
}

// FreshAt reports whether the run is younger than window at now.
func (r *Run) FreshAt(now time.Time, window time.Duration) bool {
	return now.Sub(r.CreatedAt) < window
}

// RunResult is what a run request returns, cached or not.
type RunResult struct {
	Company     string          `json:"company"`
	Ticker      string          `json:"ticker"`
	News        []NewsItem      `json:"news"`
	Candles     CandleSeriesSet `json:"candles"`
	Analysis    Analysis        `json:"analysis"`
	DownloadURL string          `json:"downloadUrl"`
	Cached      bool            `json:"cached"`
}

// RunCompletedEvent is published after a run is persisted.
type RunCompletedEvent struct {
	RunID     string         `json:"run_id"`
	Company   string         `json:"company"`
	Ticker    string         `json:"ticker"`
	Status    AnalysisStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

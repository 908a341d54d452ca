package models

// AnalysisStatus tags which variant of Analysis a value is.
//
//	ok       all three facets present
//	degraded reasoning output unusable or partial; locally computed facets kept
//	failed   reasoning service could not be reached; only local facets
type AnalysisStatus string

const (
	AnalysisOK       AnalysisStatus = "ok"
	AnalysisDegraded AnalysisStatus = "degraded"
	AnalysisFailed   AnalysisStatus = "failed"
)

// Analysis error kinds.
const (
	ErrKindSynthesis     = "synthesis_error"
	ErrKindMissingFacets = "missing_facets"
	ErrKindUpstream      = "upstream_provider_error"
)

// TimeframeSnapshot is the latest indicator state of one interval.
type TimeframeSnapshot struct {
	Close      float64 `json:"close"`
	EMA20      float64 `json:"ema_20"`
	EMA50      float64 `json:"ema_50"`
	RSI        float64 `json:"rsi"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	Cross      Cross   `json:"cross,omitempty"`
	Rows       int     `json:"rows"`
}

type TechnicalAnalysis struct {
	Timeframes       map[string]TimeframeSnapshot `json:"timeframes"`
	OverallSentiment string                       `json:"overall_sentiment"`
	Summary          string                       `json:"summary,omitempty"`
}

type NewsAnalysis struct {
	SentimentScore   float64  `json:"sentiment_score"`
	KeyEvents        []string `json:"key_events"`
	ImpactAssessment string   `json:"impact_assessment"`
}

type TradeRecommendation struct {
	Signal          string  `json:"signal"`
	EntryPrice      float64 `json:"entry_price"`
	StopLoss        float64 `json:"stop_loss"`
	TakeProfit      float64 `json:"take_profit"`
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// AnalysisError is the error facet attached to non-ok analyses.
type AnalysisError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Raw     string `json:"raw,omitempty"`
}

// Analysis is the tagged result of report synthesis. TechnicalAnalysis is
// always set.
type Analysis struct {
	Status              AnalysisStatus       `json:"status"`
	TechnicalAnalysis   *TechnicalAnalysis   `json:"technical_analysis"`
	NewsAnalysis        *NewsAnalysis        `json:"news_analysis,omitempty"`
	TradeRecommendation *TradeRecommendation `json:"trade_recommendation,omitempty"`
	Error               *AnalysisError       `json:"error,omitempty"`
}

// OK reports whether all facets are present.
func (a Analysis) OK() bool { return a.Status == AnalysisOK }

package report

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
	"StockPulse/internal/services/indicators"
	"StockPulse/pkg/logger"
)

var jsonTail = regexp.MustCompile(`(?s)\{.*\}\s*$`)

// Synthesizer produces the three facet analysis with one reasoner call.
type Synthesizer struct {
	reasoner service.Reasoner
	log      *logger.Logger
}

var _ service.Synthesizer = (*Synthesizer)(nil)

func New(reasoner service.Reasoner, log *logger.Logger) *Synthesizer {
	return &Synthesizer{reasoner: reasoner, log: log}
}

// Top-level keys of the reasoning output.
const (
	facetTechnical = "technical_analysis"
	facetNews      = "news_analysis"
	facetTrade     = "trade_recommendation"
)

// Synthesize never returns an error. Reasoner failures yield a failed
// analysis and unusable output a degraded one; both keep the locally
// computed technical facet.
func (s *Synthesizer) Synthesize(ctx context.Context, company, ticker string, news []models.NewsItem, candles models.CandleSeriesSet) models.Analysis {
	local := indicators.Summarize(candles)

	trusted, err := json.Marshal(map[string]*models.TechnicalAnalysis{"technical_analysis": local})
	if err != nil {
		return failed(local, err)
	}
	messages := []service.Message{
		{Role: "assistant", Content: string(trusted)},
		{Role: "user", Content: UserPrompt(company, ticker, news, candles)},
	}

	raw, err := s.reasoner.Complete(ctx, systemPrompt, messages)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = models.NewUpstreamError(s.reasoner.Name(), "complete", errors.New("empty response"))
	}
	if err != nil {
		s.log.Error("reasoner call failed",
			logger.String("company", company),
			logger.String("provider", s.reasoner.Name()),
			logger.Error(err),
		)
		return failed(local, err)
	}

	return s.decode(company, raw, local)
}

// decode splits the output into facets first so one malformed facet does not
// discard the others. Only text that is not a JSON object is a synthesis error.
func (s *Synthesizer) decode(company, raw string, local *models.TechnicalAnalysis) models.Analysis {
	var facets map[string]json.RawMessage
	if err := json.Unmarshal([]byte(Extract(raw)), &facets); err != nil {
		serr := &models.SynthesisError{Raw: raw, Err: err}
		s.log.Warn("reasoner output not json",
			logger.String("company", company),
			logger.Error(serr),
		)
		return models.Analysis{
			Status:            models.AnalysisDegraded,
			TechnicalAnalysis: local,
			Error:             &models.AnalysisError{Kind: models.ErrKindSynthesis, Message: serr.Error(), Raw: raw},
		}
	}

	a := models.Analysis{
		Status:            models.AnalysisOK,
		TechnicalAnalysis: technical(facets[facetTechnical], local),
	}

	var problems []string
	var news models.NewsAnalysis
	switch err := decodeFacet(facets[facetNews], &news); {
	case err == errFacetAbsent:
		problems = append(problems, "missing "+facetNews)
	case err != nil:
		problems = append(problems, "invalid "+facetNews+": "+err.Error())
	default:
		a.NewsAnalysis = &news
	}

	var trade models.TradeRecommendation
	switch err := decodeFacet(facets[facetTrade], &trade); {
	case err == errFacetAbsent:
		problems = append(problems, "missing "+facetTrade)
	case err != nil:
		problems = append(problems, "invalid "+facetTrade+": "+err.Error())
	default:
		a.TradeRecommendation = &trade
	}

	if len(problems) > 0 {
		a.Status = models.AnalysisDegraded
		a.Error = &models.AnalysisError{
			Kind:    models.ErrKindMissingFacets,
			Message: strings.Join(problems, "; "),
			Raw:     raw,
		}
		s.log.Warn("reasoner output partial",
			logger.String("company", company),
			logger.Strings("problems", problems),
		)
	}
	return a
}

var errFacetAbsent = errors.New("facet absent")

func decodeFacet(raw json.RawMessage, dest interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return errFacetAbsent
	}
	return json.Unmarshal(raw, dest)
}

// Extract returns the JSON object at the end of text, from the first '{' to
// the final '}', or text itself when there is none.
func Extract(text string) string {
	if m := jsonTail.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return text
}

// technical prefers the model's facet when it decodes and carries
// timeframes, otherwise the local one.
func technical(raw json.RawMessage, local *models.TechnicalAnalysis) *models.TechnicalAnalysis {
	if len(raw) == 0 || string(raw) == "null" {
		return local
	}
	var ta models.TechnicalAnalysis
	if err := json.Unmarshal(raw, &ta); err != nil || len(ta.Timeframes) == 0 {
		return local
	}
	if ta.OverallSentiment == "" {
		ta.OverallSentiment = local.OverallSentiment
	}
	return &ta
}

func failed(local *models.TechnicalAnalysis, err error) models.Analysis {
	return models.Analysis{
		Status:            models.AnalysisFailed,
		TechnicalAnalysis: local,
		Error:             &models.AnalysisError{Kind: models.ErrKindUpstream, Message: err.Error()},
	}
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/logger"
)

// Runner executes one run request.
type Runner interface {
	Run(ctx context.Context, req models.RunRequest) (*models.RunResult, error)
}

// WarmupHandler pre-populates runs from {company, ticker} Kafka messages.
type WarmupHandler struct {
	topic   string
	runner  Runner
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewWarmupHandler(topic string, runner Runner, metrics drepo.Metrics, log *logger.Logger) *WarmupHandler {
	return &WarmupHandler{topic: topic, runner: runner, metrics: metrics, log: log}
}

func (h *WarmupHandler) Topic() string { return h.topic }

// Handle decodes the request and runs it. Malformed messages are dropped;
// pipeline errors are returned so the consumer retries.
func (h *WarmupHandler) Handle(ctx context.Context, b []byte) error {
	var req models.RunRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("warmup_unmarshal")
		h.log.Warn("dropping malformed warm-up message", logger.Error(err))
		return nil
	}
	req.Normalize()
	if req.Company == "" {
		h.log.Warn("dropping warm-up message without company")
		return nil
	}

	res, err := h.runner.Run(ctx, req)
	if err != nil {
		h.metrics.RecordError("warmup_run")
		return fmt.Errorf("warm-up %s: %w", req.Company, err)
	}
	h.log.Info("warm-up done",
		logger.String("company", req.Company),
		logger.Bool("cached", res.Cached),
		logger.String("status", string(res.Analysis.Status)),
	)
	return nil
}

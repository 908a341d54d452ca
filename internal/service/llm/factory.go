package llm

import (
	"context"
	"fmt"

	"StockPulse/internal/domain/service"
	"StockPulse/pkg/config"
)

// New builds the reasoner selected by cfg.Provider. For non OpenAI providers
// the endpoint is only used as a base URL override when it was changed from
// the OpenAI default.
func New(ctx context.Context, cfg config.LLMConfig) (service.Reasoner, error) {
	baseURL := cfg.Endpoint
	if baseURL == DefaultOpenAIEndpoint {
		baseURL = ""
	}

	switch cfg.Provider {
	case "", "openai":
		return NewOpenAI(cfg.Endpoint, cfg.Model, cfg.APIKey, cfg.MaxTokens, cfg.Timeout), nil
	case "anthropic":
		return NewAnthropic(baseURL, cfg.Model, cfg.APIKey, cfg.MaxTokens, cfg.Timeout), nil
	case "gemini":
		return NewGemini(ctx, baseURL, cfg.Model, cfg.APIKey, cfg.MaxTokens, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
	xhttp "StockPulse/pkg/http"
)

// DefaultOpenAIEndpoint is the public chat completions URL.
const DefaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAI talks to any OpenAI compatible chat completions endpoint.
type OpenAI struct {
	endpoint  string
	model     string
	apiKey    string
	maxTokens int
	http      *xhttp.Client
}

var _ service.Reasoner = (*OpenAI)(nil)

func NewOpenAI(endpoint, model, apiKey string, maxTokens int, timeout time.Duration) *OpenAI {
	if endpoint == "" {
		endpoint = DefaultOpenAIEndpoint
	}
	return &OpenAI{
		endpoint:  endpoint,
		model:     model,
		apiKey:    apiKey,
		maxTokens: maxTokens,
		http:      xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (o *OpenAI) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o *OpenAI) Complete(ctx context.Context, system string, messages []service.Message) (string, error) {
	req := chatRequest{
		Model:     o.model,
		Messages:  make([]chatMessage, 0, len(messages)+1),
		MaxTokens: o.maxTokens,
	}
	req.Messages = append(req.Messages, chatMessage{Role: "system", Content: system})
	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if o.apiKey != "" {
		headers["Authorization"] = "Bearer " + o.apiKey
	}

	var resp chatResponse
	if err := o.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     o.endpoint,
		Headers: headers,
		Body:    req,
	}, &resp); err != nil {
		return "", models.NewUpstreamError(o.Name(), "chat completion", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", models.NewUpstreamError(o.Name(), "chat completion", errors.New("empty response"))
	}
	return resp.Choices[0].Message.Content, nil
}

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/service"
	"StockPulse/pkg/config"
)

func TestOpenAI_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "m", req.Model)
		require.Len(t, req.Messages, 3)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "assistant", req.Messages[1].Role)
		assert.Equal(t, "user", req.Messages[2].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(srv.URL, "m", "k", 100, time.Second)
	out, err := o.Complete(context.Background(), "sys", []service.Message{
		{Role: "assistant", Content: "ctx"},
		{Role: "user", Content: "go"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
}

func TestOpenAI_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			_, _ = w.Write([]byte(`{"choices":[]}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewOpenAI(srv.URL+"/empty", "m", "", 0, time.Second).Complete(context.Background(), "s", nil)
	assert.True(t, models.IsUpstream(err))

	_, err = NewOpenAI(srv.URL+"/down", "m", "", 0, time.Second).Complete(context.Background(), "s", nil)
	assert.True(t, models.IsUpstream(err))
}

func TestAnthropic_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude",
			"content":[{"type":"text","text":"{\"a\":1}"}],"stop_reason":"end_turn",
			"usage":{"input_tokens":3,"output_tokens":2}}`))
	}))
	defer srv.Close()

	a := NewAnthropic(srv.URL, "claude", "k", 64, time.Second)
	out, err := a.Complete(context.Background(), "sys", []service.Message{{Role: "user", Content: "go"}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
}

func TestNew_Providers(t *testing.T) {
	r, err := New(context.Background(), config.LLMConfig{Provider: "openai", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "openai", r.Name())

	r, err = New(context.Background(), config.LLMConfig{Provider: "anthropic", Endpoint: DefaultOpenAIEndpoint, Model: "m", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", r.Name())

	_, err = New(context.Background(), config.LLMConfig{Provider: "bogus"})
	assert.Error(t, err)
}

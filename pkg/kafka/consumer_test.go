package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	topic    string
	failures int
	calls    int
}

func (h *countingHandler) Topic() string { return h.topic }

func (h *countingHandler) Handle(_ context.Context, _ []byte) error {
	h.calls++
	if h.calls <= h.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestConsumer(t *testing.T, retries int) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retries, time.Millisecond, 2*time.Millisecond),
	)
	require.NoError(t, err)
	return c
}

func TestConsumer_ProcessRetriesUntilSuccess(t *testing.T) {
	c := newTestConsumer(t, 3)
	h := &countingHandler{topic: "warmup", failures: 2}
	c.RegisterHandler(h)

	err := c.process(kafka.Message{Topic: "warmup", Value: []byte(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, 3, h.calls)
}

func TestConsumer_ProcessGivesUp(t *testing.T) {
	c := newTestConsumer(t, 1)
	h := &countingHandler{topic: "warmup", failures: 10}
	c.RegisterHandler(h)

	err := c.process(kafka.Message{Topic: "warmup"})
	require.Error(t, err)
	assert.Equal(t, 2, h.calls)
}

func TestConsumer_HookCanSkipHandler(t *testing.T) {
	c := newTestConsumer(t, 0)
	h := &countingHandler{topic: "warmup"}
	c.RegisterHandler(h)
	c.WithConsumerHook(HookFuncs{
		Before: func(ctx context.Context, _ kafka.Message) (context.Context, error) {
			return ctx, errors.New("rejected")
		},
	})

	err := c.process(kafka.Message{Topic: "warmup"})
	require.EqualError(t, err, "rejected")
	assert.Zero(t, h.calls)
}

func TestBackoffWithJitter_Bounds(t *testing.T) {
	for attempt := 1; attempt < 10; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 80*time.Millisecond, attempt)
		assert.LessOrEqual(t, d, 80*time.Millisecond)
		assert.Greater(t, d, time.Duration(0))
	}
}

func TestExtractTraceID(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc")}}}
	ctx := WithTraceID(context.Background(), ExtractTraceID(msg))
	assert.Equal(t, "abc", TraceID(ctx))
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWith_CarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{zl: zerolog.New(&buf)}

	child := l.With(String("component", "runs"), Int("shard", 2), Bool("warm", true), Error(errors.New("boom")))
	child.Info("started", Duration("took", 1500*time.Millisecond), Strings("tags", []string{"a", "b"}))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "runs", line["component"])
	assert.Equal(t, float64(2), line["shard"])
	assert.Equal(t, true, line["warm"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, float64(1500), line["took"])
	assert.Equal(t, "a, b", line["tags"])
	assert.Equal(t, "started", line["message"])
}

func TestNew_RejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

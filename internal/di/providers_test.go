package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
	"StockPulse/internal/service/newsapi"
	"StockPulse/pkg/config"
	"StockPulse/pkg/metrics"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestProvideIntervals_DefaultsWhenUnset(t *testing.T) {
	specs, err := ProvideIntervals(testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, repository.DefaultIntervals(), specs)
}

func TestProvideIntervals_FillsLookback(t *testing.T) {
	cfg := testConfig(t)
	cfg.Market.Intervals = []config.IntervalConfig{
		{Interval: "1d"},
		{Interval: "1h", Lookback: 48 * time.Hour},
	}

	specs, err := ProvideIntervals(cfg)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, repository.DefaultLookback(repository.Interval1d), specs[0].Lookback)
	assert.Equal(t, 48*time.Hour, specs[1].Lookback)
}

func TestProvideIntervals_RejectsUnknown(t *testing.T) {
	cfg := testConfig(t)
	cfg.Market.Intervals = []config.IntervalConfig{{Interval: "4h", Lookback: time.Hour}}

	_, err := ProvideIntervals(cfg)
	assert.Error(t, err)
}

func TestProvideRedisClient_FailOpenToleratesDownRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.URL = "redis://" + mr.Addr() + "/0"
	mr.Close()

	cfg.RateLimit.FailOpen = false
	_, err := ProvideRedisClient(cfg)
	assert.Error(t, err)

	cfg.RateLimit.FailOpen = true
	client, err := ProvideRedisClient(cfg)
	require.NoError(t, err)
	_ = client.Close()
}

func TestProvideMetrics_Disabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	assert.Equal(t, metrics.Nop{}, ProvideMetrics(cfg))
}

func TestProvideEventPublisher_NilWithoutProducer(t *testing.T) {
	assert.Nil(t, ProvideEventPublisher(nil, testConfig(t)))
}

func TestProvideNewsSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.News.Provider = "rss"
	_, ok := ProvideNewsSource(cfg).(*newsapi.RSSClient)
	assert.True(t, ok)

	cfg.News.Provider = "newsapi"
	_, ok = ProvideNewsSource(cfg).(*newsapi.Client)
	assert.True(t, ok)
}

func TestProvideRunStore_SQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = filepath.Join(t.TempDir(), "runs.db")

	store, err := ProvideRunStore(cfg)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Health(ctx))

	run := &models.Run{ID: "r1", Company: "Infosys", Ticker: "INFY.NS", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, run))

	got, err := store.Latest(ctx, "Infosys")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
}

func TestProvideRunStore_Memory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "memory"

	store, err := ProvideRunStore(cfg)
	require.NoError(t, err)
	assert.NoError(t, store.Health(context.Background()))
}

func TestProvideRunStore_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "oracle"

	_, err := ProvideRunStore(cfg)
	assert.Error(t, err)
}

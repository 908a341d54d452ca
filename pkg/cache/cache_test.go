package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

func backends(t *testing.T) map[string]Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	t.Cleanup(func() {
		_ = rc.Close()
		_ = mc.Close()
	})
	return map[string]Service{"redis": rc, "memory": mc}
}

func TestService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			in := []entry{{Name: "Infosys Limited", Symbol: "INFY.NS"}}
			require.NoError(t, c.Set(ctx, "k", in, time.Minute))

			var out []entry
			require.NoError(t, c.Get(ctx, "k", &out))
			assert.Equal(t, in, out)

			ok, err := c.Exists(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, c.Delete(ctx, "k"))
			err = c.Get(ctx, "k", &out)
			assert.True(t, errors.Is(err, ErrCacheMiss))
		})
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", "2", time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", "3", time.Minute))

	var v string
	assert.ErrorIs(t, mc.Get(ctx, "a", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "c", &v))
	assert.Equal(t, "3", v)
}

func TestGetOrLoad_CachesResult(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	calls := 0
	load := func(context.Context) ([]entry, error) {
		calls++
		return []entry{{Name: "TCS", Symbol: "TCS.NS"}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrLoad(ctx, mc, "companies:tcs", time.Minute, load)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, calls)
}

func TestNewRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	url := "redis://" + mr.Addr() + "/0"

	client, cfg, err := NewRedisClient(WithRedisURL(url), WithRedisPrefix("sp"))
	require.NoError(t, err)
	assert.Equal(t, "sp", cfg.Prefix)
	_ = client.Close()

	mr.Close()

	_, _, err = NewRedisClient(WithRedisURL(url))
	assert.Error(t, err)

	client, _, err = NewRedisClient(WithRedisURL(url), WithRedisPing(false))
	require.NoError(t, err)
	_ = client.Close()
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/service/ratelimit"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
)

type brokenLimiter struct{ failOpen bool }

func (b brokenLimiter) Admit(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("connection refused")
}

func (b brokenLimiter) FailOpen() bool { return b.failOpen }

type denyingLimiter struct{ retryAfter time.Duration }

func (d denyingLimiter) Admit(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{Allowed: false, RetryAfter: d.retryAfter}, nil
}

func (d denyingLimiter) FailOpen() bool { return false }

func serve(t *testing.T, a *Admission, xff string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.POST("/api/run", func(c echo.Context) error {
		return c.String(http.StatusOK, "ran")
	}, a.Middleware())

	req := httptest.NewRequest(http.MethodPost, "/api/run", nil)
	if xff != "" {
		req.Header.Set(echo.HeaderXForwardedFor, xff)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdmission_Denies(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	l := ratelimit.New(rdb, ratelimit.Config{Points: 2, Window: time.Minute, Block: 30 * time.Second})
	a := NewAdmission(l, metrics.Nop{}, logger.NewNop())

	for i := 0; i < 2; i++ {
		rec := serve(t, a, "10.0.0.1, 172.16.0.1")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := serve(t, a, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
	assert.True(t, mr.Exists("rl:10.0.0.1"))

	// a different caller has its own budget
	rec = serve(t, a, "10.0.0.2")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmission_RetryAfterRoundsUp(t *testing.T) {
	cases := map[time.Duration]string{
		1500 * time.Millisecond: "2",
		0:                       "1",
		30 * time.Second:        "30",
	}
	for retry, want := range cases {
		a := NewAdmission(denyingLimiter{retryAfter: retry}, metrics.Nop{}, logger.NewNop())
		rec := serve(t, a, "10.0.0.9")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, want, rec.Header().Get("Retry-After"), "retry after %s", retry)
	}
}

func TestAdmission_FailOpen(t *testing.T) {
	a := NewAdmission(brokenLimiter{failOpen: true}, metrics.Nop{}, logger.NewNop())
	rec := serve(t, a, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmission_FailClosed(t *testing.T) {
	a := NewAdmission(brokenLimiter{}, metrics.Nop{}, logger.NewNop())
	rec := serve(t, a, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"rate limiter unavailable"}`, rec.Body.String())
}

func TestCallerID(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXForwardedFor, " 203.0.113.9 , 10.0.0.1")
	assert.Equal(t, "203.0.113.9", CallerID(e.NewContext(req, httptest.NewRecorder())))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:5555"
	assert.Equal(t, "198.51.100.7", CallerID(e.NewContext(req, httptest.NewRecorder())))
}

package server

import (
	"context"
	"errors"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

type noRoutes struct{}

func (noRoutes) RegisterRoutes(*echo.Echo) {}

type recordingCloser struct {
	name  string
	order *[]string
	err   error
}

func (c recordingCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

func TestShutdown_ClosesInReverseOrder(t *testing.T) {
	cfg := &config.Config{}
	log := applogger.NewNop()
	srv := xhttp.NewServer(noRoutes{}, xhttp.WithLogger(log))
	app := New(cfg, log, srv, nil, nil, nil)

	var order []string
	app.AddCloser("redis", recordingCloser{name: "redis", order: &order})
	app.AddCloser("store", recordingCloser{name: "store", order: &order, err: errors.New("boom")})
	app.AddCloser("events", recordingCloser{name: "events", order: &order})
	app.AddCloser("nothing", nil)

	assert.NoError(t, app.Shutdown(context.Background()))
	assert.Equal(t, []string{"events", "store", "redis"}, order)
}

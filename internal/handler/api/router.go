package api

import (
	"github.com/labstack/echo/v4"

	xhttp "StockPulse/pkg/http"
)

// Router registers every API handler on one echo instance.
type Router struct {
	handlers []xhttp.Handler
}

func NewRouter(run *RunHandler, download *DownloadHandler, companies *CompaniesHandler, health *HealthHandler) *Router {
	return &Router{handlers: []xhttp.Handler{run, download, companies, health}}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	for _, h := range r.handlers {
		h.RegisterRoutes(e)
	}
}

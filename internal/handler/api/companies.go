package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
)

// CompanySearcher resolves free text to listed companies.
type CompanySearcher interface {
	Search(ctx context.Context, q string, limit int) ([]models.Company, error)
}

// CompaniesHandler serves GET /api/companies.
type CompaniesHandler struct {
	logger   *xlogger.Logger
	searcher CompanySearcher
}

func NewCompaniesHandler(logger *xlogger.Logger, searcher CompanySearcher) *CompaniesHandler {
	return &CompaniesHandler{logger: logger, searcher: searcher}
}

func (h *CompaniesHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/companies", h.Search)
}

func (h *CompaniesHandler) Search(c echo.Context) error {
	req := &models.CompanySearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.AppErrorResponse(c, verr)
	}

	res, err := h.searcher.Search(c.Request().Context(), req.Q, req.Limit)
	if err != nil {
		h.logger.Error("company search failed", xlogger.String("q", req.Q), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c, "Failed to fetch companies")
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return xhttp.SuccessResponse(c, res)
}

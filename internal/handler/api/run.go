package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
)

// Runner serves run requests.
type Runner interface {
	Run(ctx context.Context, req models.RunRequest) (*models.RunResult, error)
}

// RunHandler serves POST /api/run behind admission control.
type RunHandler struct {
	logger    *xlogger.Logger
	runner    Runner
	admission echo.MiddlewareFunc
}

func NewRunHandler(logger *xlogger.Logger, runner Runner, admission echo.MiddlewareFunc) *RunHandler {
	return &RunHandler{logger: logger, runner: runner, admission: admission}
}

func (h *RunHandler) RegisterRoutes(e *echo.Echo) {
	var mw []echo.MiddlewareFunc
	if h.admission != nil {
		mw = append(mw, h.admission)
	}
	e.POST("/api/run", h.Run, mw...)
}

func (h *RunHandler) Run(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.AppErrorResponse(c, verr)
	}

	res, err := h.runner.Run(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("run failed",
			xlogger.String("company", req.Company),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func toAppError(err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return xhttp.NewAppError("ERR_VALIDATION", verr.Field, verr.Message, http.StatusBadRequest).WithError(err)
	}
	return xhttp.InternalError(err.Error()).WithError(err)
}

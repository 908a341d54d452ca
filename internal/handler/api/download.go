package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ArtifactLocator resolves a company's exported workbook.
type ArtifactLocator interface {
	Artifact(company string) (string, error)
}

// DownloadHandler serves GET /api/download.
type DownloadHandler struct {
	logger    *xlogger.Logger
	artifacts ArtifactLocator
}

func NewDownloadHandler(logger *xlogger.Logger, artifacts ArtifactLocator) *DownloadHandler {
	return &DownloadHandler{logger: logger, artifacts: artifacts}
}

func (h *DownloadHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/download", h.Download)
}

func (h *DownloadHandler) Download(c echo.Context) error {
	req := &models.DownloadRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.AppErrorResponse(c, verr)
	}

	path, err := h.artifacts.Artifact(req.Company)
	if errors.Is(err, models.ErrArtifactNotFound) {
		return c.String(http.StatusNotFound, "File not found")
	}
	if err != nil {
		return xhttp.InternalServerErrorResponse(c, err.Error())
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.String(http.StatusNotFound, "File not found")
		}
		h.logger.Error("open artifact", xlogger.String("path", path), xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c, "")
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", req.Company+".xlsx"))
	return c.Stream(http.StatusOK, xlsxMIME, f)
}

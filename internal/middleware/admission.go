package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/ratelimit"
	xhttp "StockPulse/pkg/http"
	"StockPulse/pkg/logger"
)

const (
	unknownCaller = "unknown"

	msgTooManyRequests = "Too many requests"
	msgUnavailable     = "rate limiter unavailable"
)

// Admitter decides whether a caller may proceed.
type Admitter interface {
	Admit(ctx context.Context, callerID string) (ratelimit.Decision, error)
	FailOpen() bool
}

// Admission gates requests through the limiter before any pipeline work.
type Admission struct {
	limiter Admitter
	metrics domrepo.Metrics
	log     *logger.Logger
}

// NewAdmission creates the admission middleware.
func NewAdmission(limiter Admitter, metrics domrepo.Metrics, log *logger.Logger) *Admission {
	return &Admission{limiter: limiter, metrics: metrics, log: log}
}

// Middleware returns the echo middleware.
func (a *Admission) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := CallerID(c)

			d, err := a.limiter.Admit(c.Request().Context(), caller)
			if err != nil {
				if a.limiter.FailOpen() {
					a.log.Warn("rate limiter unavailable, admitting",
						logger.String("caller", caller),
						logger.Error(err),
					)
					a.metrics.RecordAdmission("fail_open")
					return next(c)
				}
				a.log.Error("rate limiter unavailable, rejecting",
					logger.String("caller", caller),
					logger.Error(err),
				)
				a.metrics.RecordAdmission("unavailable")
				return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError(msgUnavailable).WithError(err))
			}

			if !d.Allowed {
				a.metrics.RecordAdmission("denied")
				denied := &models.AdmissionDenied{CallerID: caller, RetryAfter: d.RetryAfter}
				a.log.Debug("admission denied",
					logger.String("caller", caller),
					logger.Duration("retry_after", d.RetryAfter),
				)
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError(msgTooManyRequests).
					WithHeader("Retry-After", strconv.Itoa(denied.RetryAfterSeconds())).
					WithError(denied))
			}

			a.metrics.RecordAdmission("allowed")
			return next(c)
		}
	}
}

// CallerID resolves the caller from the first X-Forwarded-For entry, then the
// peer address.
func CallerID(c echo.Context) string {
	if xff := c.Request().Header.Get(echo.HeaderXForwardedFor); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return unknownCaller
}

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Company string `json:"company" validate:"required"`
	Limit   int    `json:"limit" default:"10" validate:"gte=1,lte=25"`
}

func (r *sampleRequest) Normalize() { r.Company = strings.TrimSpace(r.Company) }

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestReadAndValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing company", `{}`, "company is required"},
		{"blank company", `{"company":"   "}`, "company is required"},
		{"limit too high", `{"company":"Infosys","limit":99}`, "limit must be less than or equal to 25"},
		{"valid", `{"company":"Infosys"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/", tt.body)
			var req sampleRequest
			appErr := ReadAndValidateRequest(c, &req)
			if tt.wantMsg == "" {
				require.Nil(t, appErr)
				assert.Equal(t, 10, req.Limit)
				return
			}
			require.NotNil(t, appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.Status)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestAppErrorResponse(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/", "")
	err := TooManyRequestsError("Too many requests").WithHeader("Retry-After", "30")
	require.NoError(t, AppErrorResponse(c, err))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Too many requests", body.Error)
}

func TestAppErrorResponse_PlainError(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/", "")
	require.NoError(t, AppErrorResponse(c, assert.AnError))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

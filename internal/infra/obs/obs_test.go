package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cateringhub/internal/app/outbox"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDPropagatesAndLogs(t *testing.T) {
	var buf bytes.Buffer
	mw := Middleware{Logger: newLogger(&buf, "prod", slog.LevelInfo)}
	router := gin.New()
	router.Use(mw.RequestID(), mw.AccessLog())
	var seen, correlation string
	router.GET("/ping", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		correlation = outbox.CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", correlation)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http", line["msg"])
	assert.Equal(t, "/ping", line["path"])
	assert.Equal(t, "req-123", line["request_id"])
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	router := gin.New()
	router.Use(Middleware{}.RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestReadyzReportsFailedChecks(t *testing.T) {
	h := HealthHandlers{Checks: map[string]Check{
		"mongo": func(context.Context) error { return errors.New("no primary") },
		"redis": func(context.Context) error { return nil },
	}}
	router := gin.New()
	router.GET("/readyz", h.Readyz)
	router.GET("/livez", h.Livez)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no primary")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

//go:build unit

package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"rogu-booking/internal/handler/middleware"
	"rogu-booking/internal/pkg/config"
	"rogu-booking/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := gin.New()
	router.Use(middleware.LoggingMiddleware(logger, config.NewTestConfig().Log))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRequestID(c))
	})

	t.Run("generates a request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/ping", nil, "")

		id := rec.Header().Get("X-Request-ID")
		assert.NotEmpty(t, id)
		assert.Equal(t, id, rec.Body.String())
		assert.Contains(t, buf.String(), `"request_id":"`+id+`"`)
		assert.Contains(t, buf.String(), `"status_code":200`)
	})

	t.Run("keeps the caller's request id and idempotency key", func(t *testing.T) {
		buf.Reset()
		rec := httptest.PerformRequestWithHeaders(t, router, http.MethodGet, "/ping", nil,
			map[string]string{"X-Request-ID": "req-42", "Idempotency-Key": "idem-1"}, "")

		assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
		assert.Contains(t, buf.String(), `"idempotency_key":"idem-1"`)
	})
}

package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/akylbek/payment-system/paydock-notification/internal/config"
)

func TestInitTelemetry_InvalidLogLevel(t *testing.T) {
	err := InitTelemetry(config.TelemetryConfig{
		ServiceName:    "paydock-notification",
		JaegerEndpoint: "localhost:4318",
		LogLevel:       "loud",
	})
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestTracingMiddleware_PassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TracingMiddleware())
	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", w.Code)
	}
}

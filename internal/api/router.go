package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akylbek/payment-system/paydock-notification/internal/handlers"
	"github.com/akylbek/payment-system/paydock-notification/internal/interfaces"
	"github.com/akylbek/payment-system/paydock-notification/internal/telemetry"
)

// RouterDeps holds the dependencies of the HTTP routes.
type RouterDeps struct {
	Processor handlers.NotificationProcessor
	Journal   interfaces.NotificationJournal
}

func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": telemetry.ServiceName})
	})

	// Gateways may deliver with any verb; the handler acknowledges non-POST
	// requests without processing them.
	notificationHandler := handlers.NewNotificationHandler(deps.Processor)
	r.Any("/notification", notificationHandler.HandleNotification)

	journalHandler := handlers.NewNotificationJournalHandler(deps.Journal)
	r.GET("/payments/:id/notifications", journalHandler.ListNotifications)

	return r
}

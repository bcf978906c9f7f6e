package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/paydock-notification/internal/models"
	"github.com/akylbek/payment-system/paydock-notification/internal/service"
	"github.com/akylbek/payment-system/paydock-notification/internal/telemetry"
)

// NotificationProcessor reconciles one gateway notification.
type NotificationProcessor interface {
	Process(ctx context.Context, event *models.NotificationEvent) service.Result
}

type NotificationHandler struct {
	processor NotificationProcessor
}

func NewNotificationHandler(processor NotificationProcessor) *NotificationHandler {
	return &NotificationHandler{processor: processor}
}

// HandleNotification acknowledges every delivery with 200 unless the failure
// is recoverable, in which case it answers 500 so the gateway redelivers.
func (h *NotificationHandler) HandleNotification(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		telemetry.Logger.Debug("Ignoring non-POST notification request",
			zap.String("method", c.Request.Method),
		)
		c.Status(http.StatusOK)
		return
	}

	var event models.NotificationEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		telemetry.Logger.Error("Error decoding notification", zap.Error(err))
		accepted(c)
		return
	}

	result := h.processor.Process(c.Request.Context(), &event)
	if result.Recoverable() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Message})
		return
	}

	accepted(c)
}

func accepted(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notificationResponse": "[accepted]"})
}

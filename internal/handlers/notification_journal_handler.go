package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/paydock-notification/internal/interfaces"
	"github.com/akylbek/payment-system/paydock-notification/internal/models"
	"github.com/akylbek/payment-system/paydock-notification/internal/telemetry"
)

type NotificationJournalHandler struct {
	journal interfaces.NotificationJournal
}

func NewNotificationJournalHandler(journal interfaces.NotificationJournal) *NotificationJournalHandler {
	return &NotificationJournalHandler{journal: journal}
}

func (h *NotificationJournalHandler) ListNotifications(c *gin.Context) {
	paymentID := c.Param("id")

	records, err := h.journal.ListByPayment(c.Request.Context(), paymentID)
	if err != nil {
		telemetry.Logger.Error("Error listing notifications",
			zap.String("payment_id", paymentID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	if records == nil {
		records = []models.NotificationRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"payment_id":    paymentID,
		"notifications": records,
	})
}

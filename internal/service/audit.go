package service

import (
	"time"

	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

// auditLog accumulates the interactions of one notification. It is flushed
// onto the payment once the flow has finished.
type auditLog struct {
	paymentID string
	requestID string
	now       func() time.Time
	entries   []models.AuditLogEntry
}

func newAuditLog(paymentID, requestID string, now func() time.Time) *auditLog {
	return &auditLog{paymentID: paymentID, requestID: requestID, now: now}
}

func (a *auditLog) add(chargeID, operation string, status FlowStatus, message string) {
	a.entries = append(a.entries, models.AuditLogEntry{
		ChargeID:  chargeID,
		Operation: operation,
		Status:    string(status),
		Message:   message,
		Timestamp: a.now(),
		PaymentID: a.paymentID,
		RequestID: a.requestID,
	})
}

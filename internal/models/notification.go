package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Notification event names sent by the gateway.
const (
	EventTransactionSuccess                         = "transaction_success"
	EventTransactionFailure                         = "transaction_failure"
	EventFraudCheckInReview                         = "fraud_check_in_review"
	EventFraudCheckInReviewAsyncApproved            = "fraud_check_in_review_async_approved"
	EventFraudCheckTransactionInReviewAsyncApproved = "fraud_check_transaction_in_review_async_approved"
	EventFraudCheckSuccess                          = "fraud_check_success"
	EventFraudCheckTransactionInReviewApproved      = "fraud_check_transaction_in_review_approved"
	EventFraudCheckFailed                           = "fraud_check_failed"
	EventFraudCheckTransactionInReviewDeclined      = "fraud_check_transaction_in_review_declined"

	EventStandaloneFraudCheckSuccess               = "standalone_fraud_check_success"
	EventStandaloneFraudCheckFailed                = "standalone_fraud_check_failed"
	EventStandaloneFraudCheckInReviewApproved      = "standalone_fraud_check_in_review_approved"
	EventStandaloneFraudCheckInReviewDeclined      = "standalone_fraud_check_in_review_declined"
	EventStandaloneFraudCheckInReviewAsyncApproved = "standalone_fraud_check_in_review_async_approved"
	EventStandaloneFraudCheckInReviewAsyncDeclined = "standalone_fraud_check_in_review_async_declined"

	EventRefundSuccess = "refund_success"
)

// NotificationEvent is one webhook delivery from the gateway.
type NotificationEvent struct {
	EventName string              `json:"event"`
	Payload   NotificationPayload `json:"data"`
}

// NotificationPayload is the charge snapshot carried by a notification.
type NotificationPayload struct {
	ID          string           `json:"_id"`
	Reference   string           `json:"reference"`
	Status      string           `json:"status"`
	Type        string           `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	Currency    string           `json:"currency"`
	Capture     bool             `json:"capture"`
	FromWebhook bool             `json:"from_webhook"`
	Customer    CustomerSnapshot `json:"customer"`
	Transaction *Transaction     `json:"transaction,omitempty"`
}

// CustomerSnapshot is the customer block of a notification.
type CustomerSnapshot struct {
	FirstName     string         `json:"first_name,omitempty"`
	LastName      string         `json:"last_name,omitempty"`
	Email         string         `json:"email,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	PaymentSource map[string]any `json:"payment_source,omitempty"`
}

// Transaction is the transaction that triggered the notification.
type Transaction struct {
	ID     string          `json:"_id,omitempty"`
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type,omitempty"`
	Status string          `json:"status,omitempty"`
}

// NotificationOutcome is published after each notification is processed.
type NotificationOutcome struct {
	RequestID   string    `json:"request_id"`
	PaymentID   string    `json:"payment_id"`
	Reference   string    `json:"reference"`
	Event       string    `json:"event"`
	ChargeID    string    `json:"charge_id"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Recoverable bool      `json:"recoverable"`
	ProcessedAt time.Time `json:"processed_at"`
}

// NotificationRecord is a journal row for one processed notification.
type NotificationRecord struct {
	RequestID   string    `json:"request_id"`
	PaymentID   string    `json:"payment_id"`
	Reference   string    `json:"reference"`
	Event       string    `json:"event"`
	ChargeID    string    `json:"charge_id"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Recoverable bool      `json:"recoverable"`
	ReceivedAt  time.Time `json:"received_at"`
}

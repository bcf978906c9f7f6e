package interfaces

import (
	"context"

	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

// FraudContinuationStore defines the contract for pending fraud check data
type FraudContinuationStore interface {
	Put(ctx context.Context, reference string, record *models.FraudContinuation) error
	// Get returns nil without error when nothing is stored for reference.
	Get(ctx context.Context, reference string) (*models.FraudContinuation, error)
	Delete(ctx context.Context, reference string) error
	// Take atomically reads and removes the record. It returns nil without
	// error when nothing is stored.
	Take(ctx context.Context, reference string) (*models.FraudContinuation, error)
}

// NotificationJournal defines the contract for processed notification records
type NotificationJournal interface {
	Record(ctx context.Context, record *models.NotificationRecord) error
	ListByPayment(ctx context.Context, paymentID string) ([]models.NotificationRecord, error)
}

// EventPublisher defines the contract for outcome event publishing
type EventPublisher interface {
	PublishOutcome(ctx context.Context, outcome *models.NotificationOutcome) error
}

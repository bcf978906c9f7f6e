package interfaces

import (
	"context"
	"encoding/json"

	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

// Collection names a commerce platform resource collection.
type Collection string

const (
	CollectionPayments Collection = "payments"
	CollectionOrders   Collection = "orders"
)

// CommerceResponse carries the raw body of a commerce platform resource.
type CommerceResponse struct {
	Body json.RawMessage
}

// CommerceClient defines the contract for commerce platform access
type CommerceClient interface {
	FetchByID(ctx context.Context, collection Collection, id string) (*CommerceResponse, error)
	// FetchOrderByReference returns nil without error when no order matches.
	FetchOrderByReference(ctx context.Context, collection Collection, reference string) (*CommerceResponse, error)
	// Update applies actions only if version matches the stored version.
	Update(ctx context.Context, collection Collection, id string, version int64, actions []models.UpdateAction) (*CommerceResponse, error)
}

// AggregateGateway defines typed access to payment and order aggregates
type AggregateGateway interface {
	FetchPayment(ctx context.Context, id string) (*models.PaymentAggregate, error)
	FetchOrder(ctx context.Context, paymentID string) (*models.Order, error)
	UpdatePayment(ctx context.Context, id string, version int64, actions []models.UpdateAction) (*models.PaymentAggregate, error)
	TransitionOrder(ctx context.Context, paymentID string, paymentState models.CommercePaymentState, orderState models.CommerceOrderState) error
	AppendInteractions(ctx context.Context, paymentID string, entries []models.AuditLogEntry) error
}

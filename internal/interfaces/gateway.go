package interfaces

import (
	"context"

	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

// GatewayCaller defines the contract for outbound payment gateway calls.
// Non-2xx responses are returned as data; only transport faults are errors.
type GatewayCaller interface {
	Call(ctx context.Context, path string, body any, method string) (*models.GatewayResponse, error)
}

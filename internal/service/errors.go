package service

import (
	"errors"

	"github.com/akylbek/payment-system/paydock-notification/internal/commerce"
	"github.com/akylbek/payment-system/paydock-notification/internal/gateway"
	"github.com/akylbek/payment-system/paydock-notification/internal/repository"
)

// IsRecoverable reports whether err is a concurrency conflict or a transport
// failure, which a fresh redelivery can resolve.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}

	var commerceTransport *commerce.TransportError
	var gatewayTransport *gateway.TransportError

	switch {
	case errors.Is(err, commerce.ErrConcurrentModification):
		return true
	case errors.Is(err, repository.ErrStoreUnavailable):
		return true
	case errors.As(err, &commerceTransport):
		return true
	case errors.As(err, &gatewayTransport):
		return true
	default:
		return false
	}
}

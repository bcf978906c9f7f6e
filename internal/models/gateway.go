package models

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// GatewayResponse is the normalized envelope of a gateway API call.
type GatewayResponse struct {
	Status   int              `json:"status"`
	Resource *GatewayResource `json:"resource,omitempty"`
	Error    *GatewayError    `json:"error,omitempty"`
}

// Charge returns the charge carried by the response, if any.
func (r *GatewayResponse) Charge() *ChargeData {
	if r == nil || r.Resource == nil {
		return nil
	}
	return r.Resource.Data
}

type GatewayResource struct {
	Type string      `json:"type"`
	Data *ChargeData `json:"data"`
}

// ChargeData is the charge object returned by the gateway.
type ChargeData struct {
	ID            string          `json:"_id"`
	AltID         string          `json:"id,omitempty"`
	Status        string          `json:"status"`
	Type          string          `json:"type"`
	Authorization Flag            `json:"authorization"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Reference     string          `json:"reference"`
}

// GatewayError is the error block of a failed gateway call.
type GatewayError struct {
	Message string          `json:"message"`
	Code    string          `json:"code,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Flag decodes a gateway boolean that may arrive as true/false, 0/1 or a
// quoted form of either.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch strings.Trim(strings.TrimSpace(string(b)), `"`) {
	case "", "null", "0", "false":
		*f = false
	default:
		*f = true
	}
	return nil
}

// ChargeRequest is the body of a charge creation call.
type ChargeRequest struct {
	Amount          json.Number     `json:"amount"`
	Reference       string          `json:"reference"`
	Currency        string          `json:"currency"`
	Customer        ChargeCustomer  `json:"customer"`
	FraudChargeID   string          `json:"fraud_charge_id,omitempty"`
	Capture         bool            `json:"capture"`
	Authorization   bool            `json:"authorization"`
	ThreeDsChargeID string          `json:"_3ds_charge_id,omitempty"`
	ThreeDs         json.RawMessage `json:"_3ds,omitempty"`
}

type ChargeCustomer struct {
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	PaymentSource map[string]any `json:"payment_source,omitempty"`
}

// FraudAttachRequest is the body of a fraud attach call.
type FraudAttachRequest struct {
	FraudChargeID string `json:"fraud_charge_id"`
}

package models

import "encoding/json"

// FraudContinuation is stored when a standalone fraud check starts and
// consumed when its completion notification arrives.
type FraudContinuation struct {
	Reference       string          `json:"reference"`
	BillingAddress  BillingAddress  `json:"billingAddress"`
	GatewayID       string          `json:"gateway_id,omitempty"`
	Capture         bool            `json:"capture"`
	ThreeDs         json.RawMessage `json:"_3ds,omitempty"`
	ThreeDsChargeID string          `json:"charge3dsId,omitempty"`
	CardCCV         string          `json:"ccv,omitempty"`
}

// RequiresThreeDs reports whether the fraud check was started with a 3DS
// requirement.
func (f *FraudContinuation) RequiresThreeDs() bool {
	s := string(f.ThreeDs)
	return s != "" && s != "null" && s != "false" && s != "{}"
}

// BillingAddress is the customer identity captured at checkout.
type BillingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PaydockStatus is the internal payment status stored on the payment's
// PaydockPaymentStatus custom field.
type PaydockStatus string

const (
	StatusPaid              PaydockStatus = "paydock-paid"
	StatusPartiallyPaid     PaydockStatus = "paydock-p-paid"
	StatusPending           PaydockStatus = "paydock-pending"
	StatusAuthorize         PaydockStatus = "paydock-authorize"
	StatusCancelled         PaydockStatus = "paydock-cancelled"
	StatusRefunded          PaydockStatus = "paydock-refunded"
	StatusPartiallyRefunded PaydockStatus = "paydock-p-refund"
	StatusRequested         PaydockStatus = "paydock-requested"
	StatusFailed            PaydockStatus = "paydock-failed"
)

// CommercePaymentState is the commerce platform's order payment-state enum.
type CommercePaymentState string

const (
	PaymentStatePaid    CommercePaymentState = "Paid"
	PaymentStatePending CommercePaymentState = "Pending"
	PaymentStateFailed  CommercePaymentState = "Failed"
)

// CommerceOrderState is the commerce platform's order-state enum.
type CommerceOrderState string

const (
	OrderStateOpen      CommerceOrderState = "Open"
	OrderStateComplete  CommerceOrderState = "Complete"
	OrderStateCancelled CommerceOrderState = "Cancelled"
)

// Custom field names on the payment aggregate.
const (
	FieldPaydockPaymentStatus     = "PaydockPaymentStatus"
	FieldCapturedAmount           = "CapturedAmount"
	FieldRefundedAmount           = "RefundedAmount"
	FieldPaydockTransactionID     = "PaydockTransactionId"
	FieldPaymentExtensionRequest  = "PaymentExtensionRequest"
	FieldPaymentExtensionResponse = "PaymentExtensionResponse"
)

// MerchantRefundedMessage is written to PaymentExtensionResponse by the
// synchronous refund flow when the merchant refunds from the commerce side.
const MerchantRefundedMessage = "Merchant refunded money"

// PaymentAggregate is a versioned snapshot of a commerce payment.
type PaymentAggregate struct {
	ID                    string
	Version               int64
	CurrentStatus         PaydockStatus
	CapturedAmount        decimal.Decimal
	RefundedAmount        decimal.Decimal
	PlannedAmount         decimal.Decimal
	Currency              string
	TransactionID         string
	LastExtensionResponse json.RawMessage
}

// WasMerchantRefunded reports whether the last extension response carries the
// merchant refund marker.
func (p *PaymentAggregate) WasMerchantRefunded() bool {
	if len(p.LastExtensionResponse) == 0 {
		return false
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(p.LastExtensionResponse, &resp); err != nil {
		return false
	}
	return resp.Message == MerchantRefundedMessage
}

// Order is the subset of a commerce order the reconciler needs.
type Order struct {
	ID      string
	Version int64
}

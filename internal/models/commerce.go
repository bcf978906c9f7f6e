package models

import "time"

// InteractionTypeKey is the custom type key of audit interactions.
const InteractionTypeKey = "paydock-payment-log-interaction"

// AuditLogEntry records one gateway interaction handled during a request.
type AuditLogEntry struct {
	ChargeID  string
	Operation string
	Status    string
	Message   string
	Timestamp time.Time
	PaymentID string
	RequestID string
}

// TypeReference points at a commerce custom type by key.
type TypeReference struct {
	Key string `json:"key"`
}

// UpdateAction is one commerce platform update action.
type UpdateAction struct {
	Action       string         `json:"action"`
	Name         string         `json:"name,omitempty"`
	Value        any            `json:"value,omitempty"`
	PaymentState string         `json:"paymentState,omitempty"`
	OrderState   string         `json:"orderState,omitempty"`
	Type         *TypeReference `json:"type,omitempty"`
	Fields       map[string]any `json:"fields,omitempty"`
}

// SetCustomField sets (or, with a nil value, removes) a custom field.
func SetCustomField(name string, value any) UpdateAction {
	return UpdateAction{Action: "setCustomField", Name: name, Value: value}
}

// ClearExtensionRequest marks the pending extension request as answered by a
// notification so the extension does not act on it again.
func ClearExtensionRequest() UpdateAction {
	return SetCustomField(FieldPaymentExtensionRequest, `{"action":"FromNotification","request":{}}`)
}

func ChangePaymentState(state CommercePaymentState) UpdateAction {
	return UpdateAction{Action: "changePaymentState", PaymentState: string(state)}
}

func ChangeOrderState(state CommerceOrderState) UpdateAction {
	return UpdateAction{Action: "changeOrderState", OrderState: string(state)}
}

// AddInterfaceInteraction converts an audit entry to its update action.
func AddInterfaceInteraction(entry AuditLogEntry) UpdateAction {
	return UpdateAction{
		Action: "addInterfaceInteraction",
		Type:   &TypeReference{Key: InteractionTypeKey},
		Fields: map[string]any{
			"createdAt":     entry.Timestamp.UTC().Format(time.RFC3339Nano),
			"chargeId":      entry.ChargeID,
			"operation":     entry.Operation,
			"status":        entry.Status,
			"message":       entry.Message,
			"paymentId":     entry.PaymentID,
			"httpRequestId": entry.RequestID,
		},
	}
}

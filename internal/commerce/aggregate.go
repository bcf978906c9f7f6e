package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/akylbek/payment-system/paydock-notification/internal/interfaces"
	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

// appendAttempts bounds the read-modify-write loop used for audit entries.
const appendAttempts = 3

// AggregateGateway maps commerce payment and order resources to aggregates
// and applies optimistic-concurrency updates to them.
type AggregateGateway struct {
	client interfaces.CommerceClient
}

var _ interfaces.AggregateGateway = (*AggregateGateway)(nil)

func NewAggregateGateway(client interfaces.CommerceClient) *AggregateGateway {
	return &AggregateGateway{client: client}
}

type money struct {
	Type           string `json:"type"`
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int32  `json:"fractionDigits"`
}

func (m money) amount() decimal.Decimal {
	if m.Type == "centPrecision" {
		return decimal.New(m.CentAmount, -m.FractionDigits)
	}
	return decimal.NewFromInt(m.CentAmount)
}

type paymentDocument struct {
	ID            string `json:"id"`
	Version       int64  `json:"version"`
	AmountPlanned money  `json:"amountPlanned"`
	Custom        struct {
		Fields struct {
			PaydockPaymentStatus     string          `json:"PaydockPaymentStatus"`
			CapturedAmount           decimal.Decimal `json:"CapturedAmount"`
			RefundedAmount           decimal.Decimal `json:"RefundedAmount"`
			PaydockTransactionID     string          `json:"PaydockTransactionId"`
			PaymentExtensionResponse string          `json:"PaymentExtensionResponse"`
		} `json:"fields"`
	} `json:"custom"`
}

type orderDocument struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
}

func decodePayment(body json.RawMessage) (*models.PaymentAggregate, error) {
	var doc paymentDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}

	fields := doc.Custom.Fields
	payment := &models.PaymentAggregate{
		ID:             doc.ID,
		Version:        doc.Version,
		CurrentStatus:  models.PaydockStatus(fields.PaydockPaymentStatus),
		CapturedAmount: fields.CapturedAmount,
		RefundedAmount: fields.RefundedAmount,
		PlannedAmount:  doc.AmountPlanned.amount(),
		Currency:       doc.AmountPlanned.CurrencyCode,
		TransactionID:  fields.PaydockTransactionID,
	}
	if fields.PaymentExtensionResponse != "" {
		payment.LastExtensionResponse = json.RawMessage(fields.PaymentExtensionResponse)
	}
	return payment, nil
}

// FetchPayment loads the payment with the given id. A missing payment
// yields an error wrapping ErrNotFound.
func (g *AggregateGateway) FetchPayment(ctx context.Context, id string) (*models.PaymentAggregate, error) {
	resp, err := g.client.FetchByID(ctx, interfaces.CollectionPayments, id)
	if err != nil {
		return nil, err
	}
	return decodePayment(resp.Body)
}

// FetchOrder loads the order whose order number is the payment id. It
// returns nil when there is no such order.
func (g *AggregateGateway) FetchOrder(ctx context.Context, paymentID string) (*models.Order, error) {
	resp, err := g.client.FetchOrderByReference(ctx, interfaces.CollectionOrders, paymentID)
	if err != nil || resp == nil {
		return nil, err
	}

	var doc orderDocument
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &models.Order{ID: doc.ID, Version: doc.Version}, nil
}

func (g *AggregateGateway) UpdatePayment(ctx context.Context, id string, version int64, actions []models.UpdateAction) (*models.PaymentAggregate, error) {
	resp, err := g.client.Update(ctx, interfaces.CollectionPayments, id, version, actions)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Body) == 0 {
		return nil, nil
	}
	return decodePayment(resp.Body)
}

// TransitionOrder moves the payment's order to the given states. Payments
// without an order are left alone.
func (g *AggregateGateway) TransitionOrder(ctx context.Context, paymentID string, paymentState models.CommercePaymentState, orderState models.CommerceOrderState) error {
	order, err := g.FetchOrder(ctx, paymentID)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}

	_, err = g.client.Update(ctx, interfaces.CollectionOrders, order.ID, order.Version, []models.UpdateAction{
		models.ChangePaymentState(paymentState),
		models.ChangeOrderState(orderState),
	})
	return err
}

// AppendInteractions writes audit entries onto a freshly read payment,
// re-reading on version conflicts.
func (g *AggregateGateway) AppendInteractions(ctx context.Context, paymentID string, entries []models.AuditLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	actions := make([]models.UpdateAction, 0, len(entries))
	for _, entry := range entries {
		actions = append(actions, models.AddInterfaceInteraction(entry))
	}

	var err error
	for attempt := 0; attempt < appendAttempts; attempt++ {
		var payment *models.PaymentAggregate
		payment, err = g.FetchPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		_, err = g.client.Update(ctx, interfaces.CollectionPayments, payment.ID, payment.Version, actions)
		if !errors.Is(err, ErrConcurrentModification) {
			return err
		}
	}
	return err
}

package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/akylbek/payment-system/paydock-notification/internal/models"
	"github.com/akylbek/payment-system/paydock-notification/internal/statusmap"
)

const msgOrderNotFound = "Order not found"

// processWebhook applies a transaction or fraud-check webhook to the payment
// and its order.
func (r *Reconciler) processWebhook(ctx context.Context, n *models.NotificationPayload, payment *models.PaymentAggregate, audit *auditLog) Result {
	operation := statusmap.Canonicalize(n.Type)

	order, err := r.aggregates.FetchOrder(ctx, payment.ID)
	if err != nil {
		return failureFrom(err)
	}
	if order == nil {
		result := businessFailure(StatusFailure, msgOrderNotFound)
		audit.add(n.ID, operation, result.Status, result.Message)
		return result
	}

	mapping := statusmap.MapStatus(n.Status, n.Capture)
	status := mapping.PaydockStatus

	var actions []models.UpdateAction
	if status == models.StatusPaid {
		captured := decimal.Zero
		if n.Transaction != nil {
			captured = n.Transaction.Amount
		}
		if captured.LessThan(payment.PlannedAmount) {
			status = models.StatusPartiallyPaid
		}
		actions = append(actions, models.SetCustomField(models.FieldCapturedAmount, captured.InexactFloat64()))
	}

	if mapping.PaydockStatus == payment.CurrentStatus || status == payment.CurrentStatus {
		return Result{Outcome: OutcomeOK, Status: StatusSuccess, ChargeID: n.ID, PaydockStatus: payment.CurrentStatus}
	}

	actions = append(actions,
		models.SetCustomField(models.FieldPaydockPaymentStatus, string(status)),
		models.ClearExtensionRequest(),
	)

	var result Result
	if _, err := r.aggregates.UpdatePayment(ctx, payment.ID, payment.Version, actions); err != nil {
		result = failureFrom(err)
	} else if err := r.aggregates.TransitionOrder(ctx, payment.ID, mapping.PaymentState, mapping.OrderState); err != nil {
		result = orderFailure(err)
	} else {
		result = success("")
	}
	result.ChargeID = n.ID
	result.PaydockStatus = status

	audit.add(n.ID, operation, result.Status, result.Message)
	return result
}

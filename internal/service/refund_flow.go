package service

import (
	"context"
	"strings"

	"github.com/akylbek/payment-system/paydock-notification/internal/models"
	"github.com/akylbek/payment-system/paydock-notification/internal/statusmap"
)

const msgRefundNotActionable = "Refund notification has no gateway transaction"

// processRefund applies a gateway refund to the payment's refund totals.
func (r *Reconciler) processRefund(ctx context.Context, n *models.NotificationPayload, payment *models.PaymentAggregate, audit *auditLog) Result {
	if n.Transaction == nil || n.FromWebhook {
		return businessFailure(StatusFailure, msgRefundNotActionable)
	}

	// The synchronous refund flow already recorded this refund; only the
	// extension markers need clearing.
	if payment.WasMerchantRefunded() {
		actions := []models.UpdateAction{
			models.SetCustomField(models.FieldPaymentExtensionResponse, nil),
			models.ClearExtensionRequest(),
		}
		if _, err := r.aggregates.UpdatePayment(ctx, payment.ID, payment.Version, actions); err != nil {
			return failureFrom(err)
		}
		return success("")
	}

	// A redelivered refund whose payment write already committed.
	if payment.TransactionID == n.ID {
		result := success("")
		result.ChargeID = n.ID
		result.PaydockStatus = payment.CurrentStatus
		return result
	}

	// Other refund statuses and zero amounts are informational.
	refundAmount := n.Transaction.Amount
	gatewayStatus := strings.ToUpper(statusmap.Canonicalize(n.Status))
	if (gatewayStatus != "REFUNDED" && gatewayStatus != "REFUND_REQUESTED") || refundAmount.IsZero() {
		return success("")
	}

	status := models.StatusPartiallyRefunded
	refunded := payment.RefundedAmount.Add(refundAmount)
	if refunded.GreaterThanOrEqual(payment.CapturedAmount) {
		status = models.StatusRefunded
		refunded = payment.CapturedAmount
	}

	actions := []models.UpdateAction{
		models.SetCustomField(models.FieldPaydockPaymentStatus, string(status)),
		models.SetCustomField(models.FieldRefundedAmount, refunded.InexactFloat64()),
		models.SetCustomField(models.FieldPaydockTransactionID, n.ID),
		models.ClearExtensionRequest(),
	}

	var result Result
	if _, err := r.aggregates.UpdatePayment(ctx, payment.ID, payment.Version, actions); err != nil {
		result = failureFrom(err)
	} else if err := r.aggregates.TransitionOrder(ctx, payment.ID, models.PaymentStatePaid, models.OrderStateComplete); err != nil {
		result = orderFailure(err)
	} else {
		result = success("Refunded " + refunded.String())
		result.PaydockStatus = status
	}
	result.ChargeID = n.ID

	audit.add(n.ID, string(status), result.Status, result.Message)
	return result
}

package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/paydock-notification/internal/models"
	"github.com/akylbek/payment-system/paydock-notification/internal/statusmap"
)

const (
	msgFraudDataNotFound = "Fraud data not found in local storage"

	fraudStatusComplete = "complete"

	operationFraudCheck  = "Fraud Check"
	operationCharge      = "Charge"
	operationFraudAttach = "Fraud Attach"
)

// processFraud handles the completion of a standalone fraud check. Only a
// complete check leads to a charge.
func (r *Reconciler) processFraud(ctx context.Context, n *models.NotificationPayload, payment *models.PaymentAggregate, audit *auditLog) Result {
	if n.Status != fraudStatusComplete {
		return r.rejectFraud(ctx, n, payment, audit)
	}
	return r.completeFraud(ctx, n, payment, audit)
}

func (r *Reconciler) rejectFraud(ctx context.Context, n *models.NotificationPayload, payment *models.PaymentAggregate, audit *auditLog) Result {
	operation := statusmap.Canonicalize(n.Type)

	if err := r.continuations.Delete(ctx, n.Reference); err != nil {
		result := failureFrom(err)
		audit.add(n.ID, operation, result.Status, result.Message)
		return result
	}

	actions := []models.UpdateAction{
		models.SetCustomField(models.FieldPaydockPaymentStatus, string(models.StatusFailed)),
		models.ClearExtensionRequest(),
	}

	var result Result
	if _, err := r.aggregates.UpdatePayment(ctx, payment.ID, payment.Version, actions); err != nil {
		result = failureFrom(err)
	} else {
		result = businessFailure(StatusFailure, operation)
		result.PaydockStatus = models.StatusFailed
	}
	result.ChargeID = n.ID

	audit.add(n.ID, operation, result.Status, result.Message)
	return result
}

func (r *Reconciler) completeFraud(ctx context.Context, n *models.NotificationPayload, payment *models.PaymentAggregate, audit *auditLog) Result {
	continuation, err := r.continuations.Take(ctx, n.Reference)
	if err != nil {
		result := failureFrom(err)
		audit.add(n.ID, operationFraudCheck, result.Status, result.Message)
		return result
	}
	if continuation == nil {
		result := businessFailure(StatusFailure, msgFraudDataNotFound)
		audit.add(n.ID, operationFraudCheck, result.Status, result.Message)
		return result
	}

	// The continuation is consumed from here on, so every failure below is
	// terminal.
	capture := continuation.Capture
	charge := r.charges.CreateCharge(ctx, buildChargeRequest(n, continuation), ChargeOptions{DirectCharge: &capture})
	if !charge.Success {
		result := businessFailure(StatusUnfulfilledCondition, "Can't charge."+charge.Message)
		result.ChargeID = charge.ChargeID
		audit.add(charge.ChargeID, operationCharge, result.Status, result.Message)
		return result
	}

	if continuation.RequiresThreeDs() {
		attach := r.charges.CreateCharge(ctx, models.FraudAttachRequest{FraudChargeID: n.ID}, ChargeOptions{
			Action:   ChargeActionFraudAttach,
			ChargeID: charge.ChargeID,
		})
		if !attach.Success {
			result := businessFailure(StatusUnfulfilledCondition, "Can't fraud attach."+attach.Message)
			result.ChargeID = charge.ChargeID
			audit.add(charge.ChargeID, operationFraudAttach, result.Status, result.Message)
			return result
		}
	}

	return r.settleFraudCharge(ctx, payment, charge, audit)
}

// settleFraudCharge records the created charge on the payment. If the payment
// write is rejected the payment is marked failed instead of being left stale.
func (r *Reconciler) settleFraudCharge(ctx context.Context, payment *models.PaymentAggregate, charge *ChargeResult, audit *auditLog) Result {
	data := charge.Response.Charge()
	if data == nil {
		data = &models.ChargeData{}
	}
	operation := statusmap.Canonicalize(data.Type)
	paymentState, status := statusmap.MapFraudChargeStatus(bool(data.Authorization), statusmap.Canonicalize(data.Status))

	actions := []models.UpdateAction{
		models.SetCustomField(models.FieldPaydockPaymentStatus, string(status)),
		models.SetCustomField(models.FieldPaydockTransactionID, charge.ChargeID),
	}

	if _, err := r.aggregates.UpdatePayment(ctx, payment.ID, payment.Version, actions); err != nil {
		return r.abandonFraudCharge(ctx, payment.ID, charge.ChargeID, operation, err, audit)
	}

	var result Result
	if err := r.aggregates.TransitionOrder(ctx, payment.ID, paymentState, models.OrderStateOpen); err != nil {
		r.logger.Warn("Failed to transition order after fraud charge",
			zap.String("payment_id", payment.ID),
			zap.String("charge_id", charge.ChargeID),
			zap.Error(err),
		)
		result = orderFailure(err)
	} else {
		result = success("")
	}
	result.ChargeID = charge.ChargeID
	result.PaydockStatus = status

	audit.add(charge.ChargeID, operation, result.Status, result.Message)
	return result
}

func (r *Reconciler) abandonFraudCharge(ctx context.Context, paymentID, chargeID, operation string, err error, audit *auditLog) Result {
	r.logger.Warn("Failed to record fraud charge, marking payment failed",
		zap.String("payment_id", paymentID),
		zap.String("charge_id", chargeID),
		zap.Error(err),
	)

	result := businessFailure(StatusFailure, err.Error())
	result.Cause = err
	result.ChargeID = chargeID
	result.PaydockStatus = models.StatusFailed

	if ferr := r.failFraudCharge(ctx, paymentID, chargeID); ferr != nil {
		r.logger.Error("Failed to mark payment failed after fraud charge",
			zap.String("payment_id", paymentID),
			zap.String("charge_id", chargeID),
			zap.Error(ferr),
		)
	}

	audit.add(chargeID, operation, result.Status, result.Message)
	return result
}

func (r *Reconciler) failFraudCharge(ctx context.Context, paymentID, chargeID string) error {
	payment, err := r.aggregates.FetchPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	actions := []models.UpdateAction{
		models.SetCustomField(models.FieldPaydockPaymentStatus, string(models.StatusFailed)),
		models.SetCustomField(models.FieldPaydockTransactionID, chargeID),
		models.ClearExtensionRequest(),
	}
	if _, err := r.aggregates.UpdatePayment(ctx, payment.ID, payment.Version, actions); err != nil {
		return err
	}
	return r.aggregates.TransitionOrder(ctx, payment.ID, models.PaymentStateFailed, models.OrderStateCancelled)
}

// buildChargeRequest combines the stored checkout data with the fraud
// notification into a charge creation body.
func buildChargeRequest(n *models.NotificationPayload, c *models.FraudContinuation) models.ChargeRequest {
	source := make(map[string]any, len(n.Customer.PaymentSource)+2)
	for k, v := range n.Customer.PaymentSource {
		source[k] = v
	}
	if c.GatewayID != "" {
		source["gateway_id"] = c.GatewayID
	}
	if c.CardCCV != "" {
		source["card_ccv"] = c.CardCCV
	}

	request := models.ChargeRequest{
		Amount:    json.Number(n.Amount.String()),
		Reference: n.Reference,
		Currency:  n.Currency,
		Customer: models.ChargeCustomer{
			FirstName:     c.BillingAddress.FirstName,
			LastName:      c.BillingAddress.LastName,
			Email:         c.BillingAddress.Email,
			Phone:         c.BillingAddress.Phone,
			PaymentSource: source,
		},
		FraudChargeID:   n.ID,
		Capture:         c.Capture,
		Authorization:   !c.Capture,
		ThreeDsChargeID: c.ThreeDsChargeID,
	}
	if c.RequiresThreeDs() {
		request.ThreeDs = c.ThreeDs
	}
	return request
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/paydock-notification/internal/commerce"
	"github.com/akylbek/payment-system/paydock-notification/internal/interfaces"
	"github.com/akylbek/payment-system/paydock-notification/internal/metrics"
	"github.com/akylbek/payment-system/paydock-notification/internal/models"
	"github.com/akylbek/payment-system/paydock-notification/internal/telemetry"
)

const (
	msgReferenceNotFound = "Reference not found"
	msgPaymentNotFound   = "Payment not found"
	msgEventNotFound     = "Notification Event not found"
)

// Dependencies are the collaborators of a Reconciler. Publisher, Journal and
// Logger are optional.
type Dependencies struct {
	Aggregates    interfaces.AggregateGateway
	Continuations interfaces.FraudContinuationStore
	Gateway       interfaces.GatewayCaller
	Publisher     interfaces.EventPublisher
	Journal       interfaces.NotificationJournal
	Logger        *zap.Logger
}

type flowFunc func(ctx context.Context, n *models.NotificationPayload, payment *models.PaymentAggregate, audit *auditLog) Result

// Reconciler folds gateway notifications into commerce payments and orders.
type Reconciler struct {
	aggregates    interfaces.AggregateGateway
	continuations interfaces.FraudContinuationStore
	charges       *ChargeOrchestrator
	publisher     interfaces.EventPublisher
	journal       interfaces.NotificationJournal
	logger        *zap.Logger
	now           func() time.Time
	newRequestID  func() string
}

func NewReconciler(deps Dependencies) *Reconciler {
	logger := deps.Logger
	if logger == nil {
		logger = telemetry.Logger
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = nopPublisher{}
	}
	journal := deps.Journal
	if journal == nil {
		journal = nopJournal{}
	}

	return &Reconciler{
		aggregates:    deps.Aggregates,
		continuations: deps.Continuations,
		charges:       NewChargeOrchestrator(deps.Gateway, logger),
		publisher:     publisher,
		journal:       journal,
		logger:        logger,
		now:           time.Now,
		newRequestID:  uuid.NewString,
	}
}

// Process reconciles one notification. It never panics on malformed input
// and reports failures through the returned Result.
func (r *Reconciler) Process(ctx context.Context, event *models.NotificationEvent) Result {
	start := time.Now()
	requestID := r.newRequestID()
	n := &event.Payload

	ctx, span := telemetry.Tracer.Start(ctx, "Reconciler.Process")
	defer span.End()
	span.SetAttributes(
		attribute.String("notification.event", event.EventName),
		attribute.String("notification.reference", n.Reference),
		attribute.String("notification.request_id", requestID),
	)

	result := r.route(ctx, event, requestID)

	span.SetAttributes(
		attribute.String("notification.status", string(result.Status)),
		attribute.String("notification.outcome", result.Outcome.String()),
	)
	if result.Outcome != OutcomeOK {
		span.SetStatus(codes.Error, result.Message)
	}

	metrics.NotificationsTotal.WithLabelValues(event.EventName, string(result.Status)).Inc()
	metrics.NotificationDuration.WithLabelValues(event.EventName).Observe(time.Since(start).Seconds())

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("event", event.EventName),
		zap.String("reference", n.Reference),
		zap.String("payment_id", result.PaymentID),
		zap.String("status", string(result.Status)),
		zap.String("outcome", result.Outcome.String()),
		zap.String("message", result.Message),
	}
	switch result.Outcome {
	case OutcomeOK:
		r.logger.Info("Notification processed", fields...)
	case OutcomeBusinessFailure:
		r.logger.Warn("Notification rejected", fields...)
	default:
		r.logger.Error("Notification failed", append(fields, zap.Error(result.Cause))...)
	}

	r.report(ctx, event, requestID, result)
	return result
}

func (r *Reconciler) route(ctx context.Context, event *models.NotificationEvent, requestID string) Result {
	n := &event.Payload
	if n.Reference == "" {
		return businessFailure(StatusFailure, msgReferenceNotFound)
	}

	payment, err := r.aggregates.FetchPayment(ctx, n.Reference)
	if err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			return businessFailure(StatusFailure, msgPaymentNotFound)
		}
		return failureFrom(err)
	}

	audit := newAuditLog(payment.ID, requestID, r.now)

	var flow flowFunc
	var flowName string
	switch event.EventName {
	case models.EventTransactionSuccess,
		models.EventTransactionFailure,
		models.EventFraudCheckInReview,
		models.EventFraudCheckInReviewAsyncApproved,
		models.EventFraudCheckTransactionInReviewAsyncApproved,
		models.EventFraudCheckSuccess,
		models.EventFraudCheckTransactionInReviewApproved,
		models.EventFraudCheckFailed,
		models.EventFraudCheckTransactionInReviewDeclined:
		flow, flowName = r.processWebhook, "webhook"
	case models.EventStandaloneFraudCheckSuccess,
		models.EventStandaloneFraudCheckFailed,
		models.EventStandaloneFraudCheckInReviewApproved,
		models.EventStandaloneFraudCheckInReviewDeclined,
		models.EventStandaloneFraudCheckInReviewAsyncApproved,
		models.EventStandaloneFraudCheckInReviewAsyncDeclined:
		flow, flowName = r.processFraud, "fraud"
	case models.EventRefundSuccess:
		flow, flowName = r.processRefund, "refund"
	}

	var result Result
	if flow == nil {
		result = businessFailure(StatusFailure, msgEventNotFound)
	} else {
		flowCtx, span := telemetry.Tracer.Start(ctx, "Reconciler."+flowName)
		result = flow(flowCtx, n, payment, audit)
		span.End()
	}
	result.PaymentID = payment.ID

	r.flushAudit(ctx, audit)
	return result
}

// flushAudit writes the accumulated entries in a separate update because the
// flow's own update has already advanced the payment version.
func (r *Reconciler) flushAudit(ctx context.Context, audit *auditLog) {
	if len(audit.entries) == 0 {
		return
	}
	if err := r.aggregates.AppendInteractions(ctx, audit.paymentID, audit.entries); err != nil {
		metrics.AuditFlushFailuresTotal.Inc()
		r.logger.Error("Failed to write audit interactions",
			zap.String("payment_id", audit.paymentID),
			zap.String("request_id", audit.requestID),
			zap.Int("entries", len(audit.entries)),
			zap.Error(err),
		)
	}
}

func (r *Reconciler) report(ctx context.Context, event *models.NotificationEvent, requestID string, result Result) {
	processedAt := r.now()

	outcome := &models.NotificationOutcome{
		RequestID:   requestID,
		PaymentID:   result.PaymentID,
		Reference:   event.Payload.Reference,
		Event:       event.EventName,
		ChargeID:    result.ChargeID,
		Status:      string(result.Status),
		Message:     result.Message,
		Recoverable: result.Recoverable(),
		ProcessedAt: processedAt,
	}
	if err := r.publisher.PublishOutcome(ctx, outcome); err != nil {
		r.logger.Error("Failed to publish notification outcome",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}

	record := &models.NotificationRecord{
		RequestID:   requestID,
		PaymentID:   result.PaymentID,
		Reference:   event.Payload.Reference,
		Event:       event.EventName,
		ChargeID:    result.ChargeID,
		Status:      string(result.Status),
		Message:     result.Message,
		Recoverable: result.Recoverable(),
		ReceivedAt:  processedAt,
	}
	if err := r.journal.Record(ctx, record); err != nil {
		r.logger.Error("Failed to record notification",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishOutcome(context.Context, *models.NotificationOutcome) error { return nil }

type nopJournal struct{}

func (nopJournal) Record(context.Context, *models.NotificationRecord) error { return nil }

func (nopJournal) ListByPayment(context.Context, string) ([]models.NotificationRecord, error) {
	return nil, nil
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paydock_notifications_total",
		Help: "Processed gateway notifications by event and flow status.",
	}, []string{"event", "status"})

	NotificationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paydock_notification_duration_seconds",
		Help:    "Time spent reconciling one notification.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event"})

	GatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paydock_gateway_requests_total",
		Help: "Charge orchestrator calls to the gateway by action and outcome.",
	}, []string{"action", "outcome"})

	CommerceConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paydock_commerce_conflicts_total",
		Help: "Commerce updates rejected because of a stale version.",
	}, []string{"collection"})

	AuditFlushFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paydock_audit_flush_failures_total",
		Help: "Audit interaction batches that could not be written.",
	})
)

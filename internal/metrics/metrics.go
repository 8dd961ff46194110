package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymops_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymops_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymops_subscriptions_created_total",
			Help: "Subscriptions appended to the ledger, by flow (initial, extend, purchase)",
		},
		[]string{"flow"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymops_payments_total",
			Help: "Simulated payments by outcome",
		},
		[]string{"outcome"},
	)

	SessionsConsumedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymops_sessions_consumed_total",
			Help: "Sessions deducted from session-based subscriptions",
		},
	)

	ActiveSubscriptions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gymops_active_subscriptions",
			Help: "Completed subscriptions whose window contains today, by package kind",
		},
		[]string{"kind"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymops_bookings_total",
			Help: "Bookings created, by the role of the creator",
		},
		[]string{"actor_role"},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymops_booking_transitions_total",
			Help: "Booking status transitions, by target status",
		},
		[]string{"status"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymops_emails_sent_total",
			Help: "Total number of emails processed",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymops_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	ResetTokensPurgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymops_reset_tokens_purged_total",
			Help: "Expired password reset tokens removed by the reaper",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordSubscription(flow string) {
	SubscriptionsCreatedTotal.WithLabelValues(flow).Inc()
}

func RecordPayment(outcome string) {
	PaymentsTotal.WithLabelValues(outcome).Inc()
}

func RecordSessionConsumed() {
	SessionsConsumedTotal.Inc()
}

// SetActiveSubscriptions replaces the gauge with the given per-kind counts.
// Kinds missing from counts are reset to zero.
func SetActiveSubscriptions(counts map[string]int) {
	ActiveSubscriptions.Reset()
	for kind, n := range counts {
		ActiveSubscriptions.WithLabelValues(kind).Set(float64(n))
	}
}

func RecordBooking(actorRole string) {
	BookingsTotal.WithLabelValues(actorRole).Inc()
}

func RecordBookingTransition(status string) {
	BookingTransitionsTotal.WithLabelValues(status).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordResetTokensPurged(n int64) {
	ResetTokensPurgedTotal.Add(float64(n))
}

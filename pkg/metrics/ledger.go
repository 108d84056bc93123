package metrics

import "github.com/prometheus/client_golang/prometheus"

// LedgerMetrics counts money-moving outcomes across bookings, payments and payouts.
type LedgerMetrics struct {
	paymentAttempts *prometheus.CounterVec
	payoutRequests  *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
	bookingStatus   *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger counters on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_attempts_total",
		Help:      "Payment attempts recorded, by outcome and source.",
	}, []string{"status", "source"})
	payouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payout_requests_total",
		Help:      "Partner payout requests, by outcome.",
	}, []string{"outcome"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_webhooks_total",
		Help:      "Gateway webhook deliveries, by event and result.",
	}, []string{"event", "result"})
	bookings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_transitions_total",
		Help:      "Booking status transitions, by target status.",
	}, []string{"status"})
	reg.MustRegister(attempts, payouts, webhooks, bookings)
	return &LedgerMetrics{
		paymentAttempts: attempts,
		payoutRequests:  payouts,
		webhookEvents:   webhooks,
		bookingStatus:   bookings,
	}
}

// IncPaymentAttempt counts one recorded payment attempt.
func (m *LedgerMetrics) IncPaymentAttempt(status, source string) {
	if m == nil || m.paymentAttempts == nil {
		return
	}
	m.paymentAttempts.WithLabelValues(normalizeLabel(status), normalizeLabel(source)).Inc()
}

// IncPayout counts a payout request outcome (accepted, below_minimum, exceeds_available, error).
func (m *LedgerMetrics) IncPayout(outcome string) {
	if m == nil || m.payoutRequests == nil {
		return
	}
	m.payoutRequests.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncWebhook counts a webhook delivery.
func (m *LedgerMetrics) IncWebhook(event, result string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(event), normalizeLabel(result)).Inc()
}

// IncBookingTransition counts a booking moving into status.
func (m *LedgerMetrics) IncBookingTransition(status string) {
	if m == nil || m.bookingStatus == nil {
		return
	}
	m.bookingStatus.WithLabelValues(normalizeLabel(status)).Inc()
}

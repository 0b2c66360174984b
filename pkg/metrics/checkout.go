package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics tracks the business-level checkout funnel.
type CheckoutMetrics struct {
	sessionsCreated   prometheus.Counter
	ordersConfirmed   *prometheus.CounterVec
	reservationDenied prometheus.Counter
	webhookDuplicates prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	sessionsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_created_total",
		Help: "Stripe checkout sessions created.",
	})
	ordersConfirmed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_confirmed_total",
		Help: "Orders confirmed, labeled by the path that won the race.",
	}, []string{"source"})
	reservationDenied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reservations_denied_total",
		Help: "Reservation attempts rejected by the daily cap.",
	})
	webhookDuplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stripe_webhook_duplicates_total",
		Help: "Stripe webhook deliveries skipped as already processed.",
	})
	reg.MustRegister(sessionsCreated, ordersConfirmed, reservationDenied, webhookDuplicates)
	return &CheckoutMetrics{
		sessionsCreated:   sessionsCreated,
		ordersConfirmed:   ordersConfirmed,
		reservationDenied: reservationDenied,
		webhookDuplicates: webhookDuplicates,
	}
}

// IncSessionCreated counts a new checkout session.
func (m *CheckoutMetrics) IncSessionCreated() {
	if m == nil || m.sessionsCreated == nil {
		return
	}
	m.sessionsCreated.Inc()
}

// IncOrderConfirmed counts a confirmed order by source ("poll" or "webhook").
func (m *CheckoutMetrics) IncOrderConfirmed(source string) {
	if m == nil || m.ordersConfirmed == nil {
		return
	}
	m.ordersConfirmed.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncReservationDenied counts a cap rejection.
func (m *CheckoutMetrics) IncReservationDenied() {
	if m == nil || m.reservationDenied == nil {
		return
	}
	m.reservationDenied.Inc()
}

// IncWebhookDuplicate counts a skipped duplicate delivery.
func (m *CheckoutMetrics) IncWebhookDuplicate() {
	if m == nil || m.webhookDuplicates == nil {
		return
	}
	m.webhookDuplicates.Inc()
}

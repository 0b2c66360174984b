package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)
	metrics.IncSessionCreated()
	metrics.IncOrderConfirmed("poll")
	metrics.IncOrderConfirmed("poll")
	metrics.IncOrderConfirmed("webhook")
	metrics.IncReservationDenied()
	metrics.IncWebhookDuplicate()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := fetchCounterTotal(t, mfs, "checkout_sessions_created_total"); got != 1 {
		t.Fatalf("expected sessions=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "orders_confirmed_total", "source", "poll"); err != nil {
		t.Fatalf("fetch poll confirmations: %v", err)
	} else if got != 2 {
		t.Fatalf("expected poll=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "orders_confirmed_total", "source", "webhook"); err != nil {
		t.Fatalf("fetch webhook confirmations: %v", err)
	} else if got != 1 {
		t.Fatalf("expected webhook=1, got %f", got)
	}
	if got := fetchCounterTotal(t, mfs, "inventory_reservations_denied_total"); got != 1 {
		t.Fatalf("expected denied=1, got %f", got)
	}
	if got := fetchCounterTotal(t, mfs, "stripe_webhook_duplicates_total"); got != 1 {
		t.Fatalf("expected duplicates=1, got %f", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var metrics *CheckoutMetrics
	metrics.IncSessionCreated()
	metrics.IncOrderConfirmed("poll")
	metrics.IncReservationDenied()
	metrics.IncWebhookDuplicate()

	unregistered := NewCheckoutMetrics(nil)
	unregistered.IncSessionCreated()
	unregistered.IncOrderConfirmed("webhook")
}

func fetchCounterTotal(t *testing.T, mfs []*dto.MetricFamily, name string) float64 {
	t.Helper()
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		t.Fatalf("metric %q not found", name)
	}
	var total float64
	for _, metric := range mf.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	return total
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherCounter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok {
			if want != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}

func TestOrderMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetricsWithRegisterer(reg)

	m.RecordOrderCreated("standard", 3)
	m.RecordOrderCreated("standard", 2)
	m.RecordOrderCreated("custom", 0)
	m.RecordOrderRejected(RejectInsufficient)
	m.RecordCreateDuration(15 * time.Millisecond)

	assert.Equal(t, 2.0, gatherCounter(t, reg, "shop_orders_created_total", map[string]string{"kind": "standard"}))
	assert.Equal(t, 1.0, gatherCounter(t, reg, "shop_orders_created_total", map[string]string{"kind": "custom"}))
	assert.Equal(t, 5.0, gatherCounter(t, reg, "shop_stock_units_reserved_total", nil))
	assert.Equal(t, 1.0, gatherCounter(t, reg, "shop_orders_rejected_total", map[string]string{"reason": RejectInsufficient}))

	var hist dto.Metric
	require.NoError(t, m.createDuration.Write(&hist))
	assert.Equal(t, uint64(1), hist.GetHistogram().GetSampleCount())
}

func TestOrderMetrics_NilSafe(t *testing.T) {
	var m *OrderMetrics

	assert.NotPanics(t, func() {
		m.RecordOrderCreated("standard", 1)
		m.RecordOrderRejected(RejectInvalid)
		m.RecordCreateDuration(time.Second)
	})
}

func TestRegister_ReusesExistingCollector(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewOrderMetricsWithRegisterer(reg)
	second := NewOrderMetricsWithRegisterer(reg)

	first.RecordOrderCreated("custom", 0)
	second.RecordOrderCreated("custom", 0)

	assert.Equal(t, 2.0, gatherCounter(t, reg, "shop_orders_created_total", map[string]string{"kind": "custom"}))
}

func TestRegister_PanicsOnTypeClash(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{Name: "shop_stock_units_reserved_total", Help: "clash"}))

	assert.Panics(t, func() {
		NewOrderMetricsWithRegisterer(reg)
	})
}

func TestHTTPMetrics_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetricsWithRegisterer(reg)

	m.ObserveRequest("GET", "/order/{id}", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "/order/{id}", 404, time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, 1.0, gatherCounter(t, reg, "shop_http_requests_total",
		map[string]string{"method": "GET", "route": "/order/{id}", "status": "200"}))
	assert.Equal(t, 1.0, gatherCounter(t, reg, "shop_http_requests_total",
		map[string]string{"route": "unmatched"}))

	var nilMetrics *HTTPMetrics
	assert.NotPanics(t, func() { nilMetrics.ObserveRequest("GET", "/", 200, 0) })
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины отказа в создании заказа для shop_orders_rejected_total.
const (
	RejectInvalid      = "invalid"
	RejectNotFound     = "not_found"
	RejectInsufficient = "insufficient_stock"
	RejectInternal     = "internal"
)

// OrderMetrics содержит метрики оформления заказов.
type OrderMetrics struct {
	created        *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	createDuration prometheus.Histogram
	unitsReserved  prometheus.Counter
}

// NewOrderMetrics регистрирует метрики в DefaultRegisterer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer регистрирует метрики в переданном реестре.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		created: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_orders_created_total",
			Help: "Total number of client orders created",
		}, []string{"kind"}),
		rejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_orders_rejected_total",
			Help: "Total number of order creations rejected",
		}, []string{"reason"}),
		createDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "shop_order_create_duration_seconds",
			Help:    "Duration of order creation in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
		unitsReserved: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_stock_units_reserved_total",
			Help: "Total number of stock units taken by purchase orders",
		}),
	}
}

// RecordOrderCreated учитывает созданный заказ и число списанных единиц.
func (m *OrderMetrics) RecordOrderCreated(kind string, units int64) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(kind).Inc()
	if units > 0 {
		m.unitsReserved.Add(float64(units))
	}
}

// RecordOrderRejected учитывает отказ с одной из причин Reject*.
func (m *OrderMetrics) RecordOrderRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// RecordCreateDuration записывает длительность оформления заказа.
func (m *OrderMetrics) RecordCreateDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.createDuration.Observe(d.Seconds())
}

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics содержит метрики оформления и отмены заказов.
type CheckoutMetrics struct {
	// Счётчики операций
	ordersPlaced      prometheus.Counter
	ordersCanceled    prometheus.Counter
	placeFailed       prometheus.Counter
	insufficientStock prometheus.Counter
	stockRetries      prometheus.Counter

	// Гистограмма времени оформления
	placeDuration prometheus.Histogram

	// Счётчик событий timeline
	timelineEvents prometheus.Counter
}

// NewCheckoutMetrics создаёт новый экземпляр метрик оформления.
func NewCheckoutMetrics() *CheckoutMetrics {
	return newCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "grocery_orders_placed_total",
			Help: "Total number of orders placed successfully",
		}),
		ordersCanceled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "grocery_orders_canceled_total",
			Help: "Total number of orders canceled with stock restitution",
		}),
		placeFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "grocery_orders_place_failed_total",
			Help: "Total number of failed order placement attempts",
		}),
		insufficientStock: registerCounter(registerer, prometheus.CounterOpts{
			Name: "grocery_orders_insufficient_stock_total",
			Help: "Total number of placements rejected for insufficient stock",
		}),
		stockRetries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "grocery_orders_stock_retries_total",
			Help: "Total number of retries after optimistic stock conflicts",
		}),
		placeDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "grocery_orders_place_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "grocery_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced увеличивает счётчик оформленных заказов.
func (m *CheckoutMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderCanceled увеличивает счётчик отменённых заказов.
func (m *CheckoutMetrics) RecordOrderCanceled() {
	m.ordersCanceled.Inc()
}

// RecordPlaceFailed увеличивает счётчик неудачных оформлений.
func (m *CheckoutMetrics) RecordPlaceFailed() {
	m.placeFailed.Inc()
}

// RecordInsufficientStock увеличивает счётчик отказов из-за нехватки остатка.
func (m *CheckoutMetrics) RecordInsufficientStock() {
	m.insufficientStock.Inc()
}

// RecordStockRetry увеличивает счётчик повторов после конфликта версий.
func (m *CheckoutMetrics) RecordStockRetry() {
	m.stockRetries.Inc()
}

// RecordPlaceDuration записывает время оформления заказа.
func (m *CheckoutMetrics) RecordPlaceDuration(duration time.Duration) {
	m.placeDuration.Observe(duration.Seconds())
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *CheckoutMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultCommitted = "committed"
	ResultRejected  = "rejected"
	ResultFailed    = "failed"
	ResultSkipped   = "skipped"
)

// CartMetrics records what happens to cart operations and their gateway calls.
type CartMetrics struct {
	operations    *prometheus.CounterVec
	notifications *prometheus.CounterVec
	gateway       *prometheus.HistogramVec
	persistErrors prometheus.Counter
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart operations by outcome.",
	}, []string{"operation", "result"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_notifications_total",
		Help: "Notifications emitted to the shopper.",
	}, []string{"kind"})
	gateway := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_gateway_duration_seconds",
		Help:    "Duration of stock gateway calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"call", "outcome"})
	persistErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_persist_errors_total",
		Help: "Failed writes of the cart to durable storage.",
	})
	reg.MustRegister(operations, notifications, gateway, persistErrors)
	return &CartMetrics{
		operations:    operations,
		notifications: notifications,
		gateway:       gateway,
		persistErrors: persistErrors,
	}
}

// IncOperation counts one cart operation with its result.
func (c *CartMetrics) IncOperation(operation, result string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(operation), normalizeLabel(result)).Inc()
}

// IncNotification counts one notification of the given kind.
func (c *CartMetrics) IncNotification(kind string) {
	if c == nil || c.notifications == nil {
		return
	}
	c.notifications.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObserveGateway records the duration of a stock gateway call.
func (c *CartMetrics) ObserveGateway(call string, duration time.Duration, err error) {
	if c == nil || c.gateway == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.gateway.WithLabelValues(normalizeLabel(call), outcome).Observe(duration.Seconds())
}

// IncPersistError counts a failed write-through.
func (c *CartMetrics) IncPersistError() {
	if c == nil || c.persistErrors == nil {
		return
	}
	c.persistErrors.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ae_portal"

// Metrics holds the eboutic collectors. A nil *Metrics records nothing.
type Metrics struct {
	Requests           *prometheus.CounterVec
	LatencyMS          *prometheus.HistogramVec
	BasketOperations   *prometheus.CounterVec
	CheckoutRejections *prometheus.CounterVec
	Settlements        *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method"}),
		BasketOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eboutic",
			Name:      "basket_operations_total",
			Help:      "Basket mutations by operation.",
		}, []string{"operation"}),
		CheckoutRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eboutic",
			Name:      "checkout_rejections_total",
			Help:      "Refused cart materializations by reason.",
		}, []string{"reason"}),
		Settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eboutic",
			Name:      "settlements_total",
			Help:      "Settlement attempts by payment path and outcome.",
		}, []string{"path", "outcome"}),
	}

	reg.MustRegister(m.Requests, m.LatencyMS, m.BasketOperations, m.CheckoutRejections, m.Settlements)
	return m
}

func (m *Metrics) BasketOperation(op string) {
	if m == nil {
		return
	}
	m.BasketOperations.WithLabelValues(op).Inc()
}

func (m *Metrics) CheckoutRejected(reason string) {
	if m == nil {
		return
	}
	m.CheckoutRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) Settlement(path, outcome string) {
	if m == nil {
		return
	}
	m.Settlements.WithLabelValues(path, outcome).Inc()
}

func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(method).Observe(float64(elapsed.Milliseconds()))
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

package mockhttp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serverMetrics tracks request traffic per fixture route. Each server owns its
// own registry so tests can build servers side by side without tripping
// duplicate-registration panics.
type serverMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newServerMetrics() *serverMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &serverMetrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pizza_mock_requests_total",
			Help: "Requests handled, by matched route, method and status code",
		}, []string{"route", "method", "code"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pizza_mock_request_duration_seconds",
			Help:    "Request handling latency, by matched route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *serverMetrics) observe(route, method string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *serverMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

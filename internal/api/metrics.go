package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the collectors of one Server. Each Server owns a registry so
// tests can build many servers without collector conflicts.
type metrics struct {
	registry   *prometheus.Registry
	compares   *prometheus.CounterVec
	mismatches prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		compares: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydrodiff",
			Name:      "compare_requests_total",
			Help:      "Comparisons served, by outcome.",
		}, []string{"result"}),
		mismatches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hydrodiff",
			Name:      "reported_mismatches",
			Help:      "Mismatch records reported per comparison.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
		}),
	}
	m.registry.MustRegister(m.compares, m.mismatches)
	return m
}

// observe records one comparison outcome.
func (m *metrics) observe(records int) {
	result := "clean"
	if records > 0 {
		result = "mismatch"
	}
	m.compares.WithLabelValues(result).Inc()
	m.mismatches.Observe(float64(records))
}

// rejected records a request that never reached the comparison.
func (m *metrics) rejected() {
	m.compares.WithLabelValues("rejected").Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	productsDiscovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "products_discovered_total",
			Help: "Total number of products written by the discovery pass.",
		},
	)
	productsEnriched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "products_enriched_total",
			Help: "Total number of products written by the enrichment pass.",
		},
	)
	itemFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_item_failures_total",
			Help: "Per-item failures by pipeline stage.",
		},
		[]string{"stage"},
	)
	detailDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "detail_item_duration_seconds",
			Help:    "Histogram of per-candidate enrichment durations.",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
	)
)

func init() {
	prometheus.MustRegister(productsDiscovered)
	prometheus.MustRegister(productsEnriched)
	prometheus.MustRegister(itemFailures)
	prometheus.MustRegister(detailDuration)
}

func RecordDiscovered(n int) {
	productsDiscovered.Add(float64(n))
}

func RecordEnriched() {
	productsEnriched.Inc()
}

func RecordFailure(stage string) {
	itemFailures.WithLabelValues(stage).Inc()
}

func ObserveDetailDuration(d time.Duration) {
	detailDuration.Observe(d.Seconds())
}

// MetricsHandler returns the HTTP handler exporting Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

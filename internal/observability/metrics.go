package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	apiRequestsTotal   *prometheus.CounterVec
	apiLatencySeconds  *prometheus.HistogramVec
	apiErrorsTotal     *prometheus.CounterVec
	fanoutSizeRows     prometheus.Histogram
	transitionsApplied *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "widya_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "widya_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "widya_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		fanoutSizeRows = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "widya_assignment_fanout_rows",
			Help:    "Number of pending submissions created per assignment fan-out.",
			Buckets: []float64{1, 5, 10, 20, 30, 40, 60, 100},
		})

		transitionsApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "widya_submission_transitions_total",
			Help: "Ledger transitions applied, labelled by target status.",
		}, []string{"status"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, fanoutSizeRows, transitionsApplied)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// FanoutSize exposes the histogram of fan-out sizes.
func FanoutSize() prometheus.Histogram {
	RegisterMetrics()
	return fanoutSizeRows
}

// Transitions exposes the counter of applied ledger transitions.
func Transitions() *prometheus.CounterVec {
	RegisterMetrics()
	return transitionsApplied
}

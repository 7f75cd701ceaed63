package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	submissionTransitions *prometheus.CounterVec
	marksRecordedTotal    *prometheus.CounterVec
	computeLatencySeconds prometheus.Histogram
	resultsReleasedTotal  prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the API and the
// submission/evaluation domain.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fypify_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fypify_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fypify_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		submissionTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fypify_submission_transitions_total",
			Help: "Total number of submission status transitions.",
		}, []string{"to"})

		marksRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fypify_marks_recorded_total",
			Help: "Total number of marks recorded, by kind.",
		}, []string{"kind"})

		computeLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fypify_result_compute_seconds",
			Help:    "Latency distribution for final result computation.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		resultsReleasedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fypify_results_released_total",
			Help: "Total number of final results released to students.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			submissionTransitions,
			marksRecordedTotal,
			computeLatencySeconds,
			resultsReleasedTotal,
		)
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

// SubmissionTransitions exposes the submission transition counter.
func SubmissionTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionTransitions
}

// MarksRecorded exposes the marks counter.
func MarksRecorded() *prometheus.CounterVec {
	RegisterMetrics()
	return marksRecordedTotal
}

// ComputeLatency exposes the result computation histogram.
func ComputeLatency() prometheus.Histogram {
	RegisterMetrics()
	return computeLatencySeconds
}

// ResultsReleased exposes the release counter.
func ResultsReleased() prometheus.Counter {
	RegisterMetrics()
	return resultsReleasedTotal
}

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}

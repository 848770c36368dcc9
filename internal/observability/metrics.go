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
	workerInFlight     *prometheus.GaugeVec
	workerWaitSeconds  *prometheus.HistogramVec
	ocrDurationSeconds prometheus.Histogram
	extractionOutcomes *prometheus.CounterVec
	comparisonOutcomes *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the answer checker.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 4.0, 8.0, 16.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		workerInFlight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_in_flight",
			Help: "Number of blocking OCR/LLM jobs currently running.",
		}, []string{"pool"})

		workerWaitSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_wait_seconds",
			Help:    "Time spent waiting for a worker slot.",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}, []string{"pool"})

		ocrDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ocr_duration_seconds",
			Help:    "Duration of OCR recognition runs.",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 4.0, 8.0},
		})

		extractionOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "text_extractions_total",
			Help: "Text extraction requests by outcome.",
		}, []string{"outcome"})

		comparisonOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "answer_comparisons_total",
			Help: "Answer comparison requests by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			workerInFlight, workerWaitSeconds,
			ocrDurationSeconds, extractionOutcomes, comparisonOutcomes,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// WorkerInFlight exposes the gauge of running blocking jobs per pool.
func WorkerInFlight() *prometheus.GaugeVec {
	RegisterMetrics()
	return workerInFlight
}

// WorkerWait exposes the histogram of time spent queueing for a worker slot.
func WorkerWait() *prometheus.HistogramVec {
	RegisterMetrics()
	return workerWaitSeconds
}

// OCRDuration exposes the OCR latency histogram.
func OCRDuration() prometheus.Histogram {
	RegisterMetrics()
	return ocrDurationSeconds
}

// ExtractionOutcomes exposes the counter of extraction results.
func ExtractionOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return extractionOutcomes
}

// ComparisonOutcomes exposes the counter of comparison results.
func ComparisonOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return comparisonOutcomes
}

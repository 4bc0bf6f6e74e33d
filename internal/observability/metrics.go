// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scoring metrics
	ScoresComputed   *prometheus.CounterVec
	DegradedScores   prometheus.Counter
	FinalScoreValues prometheus.Histogram
	ScoringDuration  prometheus.Histogram

	// Ingestion metrics
	RecordsFetched    prometheus.Counter
	RecordsStored     prometheus.Counter
	RecordsDropped    prometheus.Counter
	DuplicatesSkipped prometheus.Counter
	LabelsFetched     prometheus.Counter
	IngestionErrors   *prometheus.CounterVec

	// Upstream API metrics
	APICallLatency *prometheus.HistogramVec
	APICallErrors  *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulScore     prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "wallet_reputation"
	}

	return &Metrics{
		// Scoring metrics
		ScoresComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "scores_computed_total",
			Help:      "Total number of reputation scores computed by profile",
		}, []string{"profile"}),
		DegradedScores: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "degraded_scores_total",
			Help:      "Total number of scores computed without risk labels",
		}),
		FinalScoreValues: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "final_score",
			Help:      "Distribution of final reputation scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		ScoringDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "duration_seconds",
			Help:      "Scoring call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Ingestion metrics
		RecordsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_fetched_total",
			Help:      "Total number of raw transaction records fetched",
		}),
		RecordsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_stored_total",
			Help:      "Total number of transaction records stored to database",
		}),
		RecordsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_dropped_total",
			Help:      "Total number of malformed records dropped by normalization",
		}),
		DuplicatesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "duplicates_skipped_total",
			Help:      "Total number of duplicate records collapsed by normalization",
		}),
		LabelsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "labels_fetched_total",
			Help:      "Total number of counterparty labels fetched",
		}),
		IngestionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by stage",
		}, []string{"stage"}),

		// Upstream API metrics
		APICallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "etherscan",
			Name:      "call_latency_seconds",
			Help:      "Etherscan API call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		APICallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "etherscan",
			Name:      "call_errors_total",
			Help:      "Total number of Etherscan API call errors",
		}, []string{"action"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		// Health metrics
		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion",
		}),
		LastSuccessfulScore: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_score_timestamp",
			Help:      "Unix timestamp of last successful scoring call",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScore records a completed scoring call.
func RecordScore(profile string, finalScore int, degraded bool, durationSeconds float64) {
	DefaultMetrics.ScoresComputed.WithLabelValues(profile).Inc()
	DefaultMetrics.FinalScoreValues.Observe(float64(finalScore))
	DefaultMetrics.ScoringDuration.Observe(durationSeconds)
	if degraded {
		DefaultMetrics.DegradedScores.Inc()
	}
}

// RecordIngestion records a completed ingestion run.
func RecordIngestion(fetched, stored, dropped, duplicates, labels int) {
	DefaultMetrics.RecordsFetched.Add(float64(fetched))
	DefaultMetrics.RecordsStored.Add(float64(stored))
	DefaultMetrics.RecordsDropped.Add(float64(dropped))
	DefaultMetrics.DuplicatesSkipped.Add(float64(duplicates))
	DefaultMetrics.LabelsFetched.Add(float64(labels))
}

// RecordIngestionError records an ingestion error.
func RecordIngestionError(stage string) {
	DefaultMetrics.IngestionErrors.WithLabelValues(stage).Inc()
}

// RecordAPICall records upstream API call metrics.
func RecordAPICall(action string, seconds float64, err error) {
	DefaultMetrics.APICallLatency.WithLabelValues(action).Observe(seconds)
	if err != nil {
		DefaultMetrics.APICallErrors.WithLabelValues(action).Inc()
	}
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHTTPRequest records HTTP request metrics.
func RecordHTTPRequest(route, status string, seconds float64) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}

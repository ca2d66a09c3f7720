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
	// Feed metrics
	FeedRequests       *prometheus.CounterVec
	FeedRequestLatency *prometheus.HistogramVec
	FeedRecords        *prometheus.CounterVec

	// Cycle metrics
	CyclesTotal     *prometheus.CounterVec
	CycleDuration   prometheus.Histogram
	PairsExamined   prometheus.Counter
	PairsRejected   *prometheus.CounterVec
	MalformedRecord *prometheus.CounterVec

	// Alert metrics
	AlertsEmitted *prometheus.CounterVec
	AlertsFailed  *prometheus.CounterVec

	// State metrics
	BackoffConsecutive prometheus.Gauge
	LedgerSize         prometheus.Gauge
	WarmupActive       prometheus.Gauge

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil registerer uses the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "solana_pair_radar"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Feed metrics
		FeedRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "requests_total",
			Help:      "Total number of feed requests by feed and outcome",
		}, []string{"feed", "outcome"}),
		FeedRequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "request_latency_seconds",
			Help:      "Feed request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"feed"}),
		FeedRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "records_total",
			Help:      "Total number of raw records returned by feed",
		}, []string{"feed"}),

		// Cycle metrics
		CyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "runs_total",
			Help:      "Total number of polling cycles by status",
		}, []string{"status"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "duration_seconds",
			Help:      "Polling cycle duration in seconds, excluding sleep",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		PairsExamined: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "pairs_examined_total",
			Help:      "Total number of pairs examined",
		}),
		PairsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "pairs_rejected_total",
			Help:      "Total number of pairs rejected by reason",
		}, []string{"reason"}),
		MalformedRecord: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "malformed_records_total",
			Help:      "Total number of raw records dropped during normalization",
		}, []string{"feed"}),

		// Alert metrics
		AlertsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alert",
			Name:      "emitted_total",
			Help:      "Total number of alerts emitted by mode",
		}, []string{"mode"}),
		AlertsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alert",
			Name:      "delivery_failures_total",
			Help:      "Total number of alert delivery failures by sink",
		}, []string{"sink"}),

		// State metrics
		BackoffConsecutive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backoff",
			Name:      "consecutive_rate_limits",
			Help:      "Current number of consecutive rate-limited cycles",
		}),
		LedgerSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dedup",
			Name:      "ledger_size",
			Help:      "Number of pair identities that already alerted",
		}),
		WarmupActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "warmup_active",
			Help:      "1 while relaxed warmup thresholds are in effect",
		}),

		// Health metrics
		LastSuccessfulCycle: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of last cycle that was not rate-limited",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordFeedRequest records a feed request outcome and latency.
func RecordFeedRequest(feed, outcome string, seconds float64) {
	DefaultMetrics.FeedRequests.WithLabelValues(feed, outcome).Inc()
	DefaultMetrics.FeedRequestLatency.WithLabelValues(feed).Observe(seconds)
}

// RecordFeedRecords adds n raw records returned by feed.
func RecordFeedRecords(feed string, n int) {
	DefaultMetrics.FeedRecords.WithLabelValues(feed).Add(float64(n))
}

// RecordCycle records a finished cycle.
func RecordCycle(status string, examined int, durationSeconds float64) {
	DefaultMetrics.CyclesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.CycleDuration.Observe(durationSeconds)
	DefaultMetrics.PairsExamined.Add(float64(examined))
}

// RecordRejection increments the rejection counter for reason.
func RecordRejection(reason string) {
	DefaultMetrics.PairsRejected.WithLabelValues(reason).Inc()
}

// RecordMalformed increments the malformed record counter for feed.
func RecordMalformed(feed string) {
	DefaultMetrics.MalformedRecord.WithLabelValues(feed).Inc()
}

// RecordAlert increments the emitted alert counter.
func RecordAlert(mode string) {
	DefaultMetrics.AlertsEmitted.WithLabelValues(mode).Inc()
}

// RecordAlertFailure increments the delivery failure counter for sink.
func RecordAlertFailure(sink string) {
	DefaultMetrics.AlertsFailed.WithLabelValues(sink).Inc()
}

// UpdateState updates the state gauges.
func UpdateState(consecutiveRateLimits, ledgerSize int, warmup bool) {
	DefaultMetrics.BackoffConsecutive.Set(float64(consecutiveRateLimits))
	DefaultMetrics.LedgerSize.Set(float64(ledgerSize))
	if warmup {
		DefaultMetrics.WarmupActive.Set(1)
	} else {
		DefaultMetrics.WarmupActive.Set(0)
	}
}

// MarkCycleSuccess records the time of the last non-rate-limited cycle.
func MarkCycleSuccess(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulCycle.Set(float64(unixSeconds))
}

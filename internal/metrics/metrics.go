// Package metrics exposes Prometheus counters for advice conversion.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "payadvice_"

// Advice results.
const (
	ResultOK       = "ok"
	ResultEmpty    = "empty"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	registerOnce sync.Once

	advicesTotal   *prometheus.CounterVec
	entriesTotal   *prometheus.CounterVec
	enrichmentRows *prometheus.CounterVec
	parseLatency   *prometheus.HistogramVec
)

// Init registers the conversion metrics with the default registry. Calling it
// more than once is harmless.
func Init() {
	registerOnce.Do(func() {
		advicesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "advices_total",
				Help: "Total payment advices processed by result",
			},
			[]string{"result"},
		)
		entriesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "entries_total",
				Help: "Total advice entries extracted by status",
			},
			[]string{"status"},
		)
		enrichmentRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "enrichment_rows_total",
				Help: "Total summary rows passed through enrichment by match outcome",
			},
			[]string{"matched"},
		)
		parseLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "parse_seconds",
				Help:    "Advice parse latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			advicesTotal,
			entriesTotal,
			enrichmentRows,
			parseLatency,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveAdvice records one processed advice and its parse duration.
func ObserveAdvice(result string, duration time.Duration) {
	if result == "" {
		result = ResultOK
	}
	if advicesTotal != nil {
		advicesTotal.WithLabelValues(result).Inc()
	}
	if parseLatency != nil {
		parseLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddEntries counts extracted entries by status.
func AddEntries(status string, count int) {
	if count <= 0 {
		return
	}
	if entriesTotal != nil {
		entriesTotal.WithLabelValues(status).Add(float64(count))
	}
}

// AddEnrichment counts matched and unmatched enrichment rows.
func AddEnrichment(matched, total int) {
	if enrichmentRows == nil || total <= 0 {
		return
	}
	if matched > 0 {
		enrichmentRows.WithLabelValues("true").Add(float64(matched))
	}
	if unmatched := total - matched; unmatched > 0 {
		enrichmentRows.WithLabelValues("false").Add(float64(unmatched))
	}
}

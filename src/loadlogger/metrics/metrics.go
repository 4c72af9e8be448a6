package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks import pipeline outcomes for the /metrics endpoint.
type Metrics struct {
	runsTotal       *prometheus.CounterVec
	recordsTotal    *prometheus.CounterVec
	runDuration     prometheus.Histogram
	lastSuccessUnix prometheus.Gauge
	failureStreak   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_runs_total",
			Help: "Total import runs by terminal status.",
		}, []string{"status"}),
		recordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "import_records_total",
			Help: "Records handled by data kind and outcome (imported or skipped).",
		}, []string{"kind", "outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "import_run_duration_seconds",
			Help:    "Histogram of import run durations.",
			Buckets: prometheus.DefBuckets,
		}),
		lastSuccessUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "import_last_success_timestamp_seconds",
			Help: "Unix time of the last successful import run.",
		}),
		failureStreak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "import_consecutive_failures",
			Help: "Current run of consecutive failed imports.",
		}),
	}

	prometheus.MustRegister(
		m.runsTotal,
		m.recordsTotal,
		m.runDuration,
		m.lastSuccessUnix,
		m.failureStreak,
	)
	return m
}

// ObserveRun records one finished import run.
func (m *Metrics) ObserveRun(status string, loadImported, loadSkipped, subImported, subSkipped int, durationSeconds float64) {
	m.runsTotal.WithLabelValues(status).Inc()
	m.recordsTotal.WithLabelValues("load", "imported").Add(float64(loadImported))
	m.recordsTotal.WithLabelValues("load", "skipped").Add(float64(loadSkipped))
	m.recordsTotal.WithLabelValues("substation", "imported").Add(float64(subImported))
	m.recordsTotal.WithLabelValues("substation", "skipped").Add(float64(subSkipped))
	m.runDuration.Observe(durationSeconds)
}

// MarkSuccess pins the last-success gauge to now.
func (m *Metrics) MarkSuccess(unix float64) {
	m.lastSuccessUnix.Set(unix)
}

// SetFailureStreak reports the current consecutive-failure count.
func (m *Metrics) SetFailureStreak(n int) {
	m.failureStreak.Set(float64(n))
}

// Handler serves the prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

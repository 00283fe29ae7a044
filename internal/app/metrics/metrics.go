package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of a crawl.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CommandsTotal  *prometheus.CounterVec
	FailuresTotal  *prometheus.CounterVec
	SkippedLinks   prometheus.Counter
	PendingCommand prometheus.Gauge
	FetchDuration  prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CommandsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "linkcheck_commands_total",
			Help: "The total number of crawl commands executed by workers",
		}, []string{"outcome"}), // "success" or "failure"
		FailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "linkcheck_failures_total",
			Help: "The total number of bad URLs by error kind",
		}, []string{"kind"}),
		SkippedLinks: f.NewCounter(prometheus.CounterOpts{
			Name: "linkcheck_skipped_links_total",
			Help: "The total number of hrefs that did not resolve to an absolute URL",
		}),
		PendingCommand: f.NewGauge(prometheus.GaugeOpts{
			Name: "linkcheck_pending_commands",
			Help: "Commands enqueued and not yet resolved",
		}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "linkcheck_fetch_duration_seconds",
			Help:    "Duration of page fetches",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncCommands(outcome string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncFailures(kind string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) AddSkipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SkippedLinks.Add(float64(n))
}

func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.PendingCommand.Set(float64(n))
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

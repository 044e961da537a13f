package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/platform/cache"
	"github.com/riskibarqy/contest-radar/internal/usecase"
)

const metricsNamespace = "contest_radar"

var _ usecase.RefreshMetrics = (*Metrics)(nil)

// Metrics records refresh activity on its own registry so the ops endpoint only
// exposes worker series plus the process and Go runtime collectors.
type Metrics struct {
	registry *prometheus.Registry

	sourceFetches       *prometheus.CounterVec
	sourceFetchDuration *prometheus.HistogramVec
	sourceRecords       *prometheus.GaugeVec
	statsDegraded       *prometheus.CounterVec
	jobRuns             *prometheus.CounterVec
	jobDuration         *prometheus.HistogramVec
	jobSkipped          *prometheus.CounterVec
	jobLastSuccess      *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(registry)

	return &Metrics{
		registry: registry,
		sourceFetches: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "source_fetch_total",
			Help:      "Contest source fetches by platform and result.",
		}, []string{"platform", "result"}),
		sourceFetchDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Contest source fetch latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"platform"}),
		sourceRecords: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "source_contests_last_fetch",
			Help:      "Contests returned by the last successful fetch per platform.",
		}, []string{"platform"}),
		statsDegraded: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "platform_stats_degraded_total",
			Help:      "Platform stat lookups that fell back to zero.",
		}, []string{"platform", "reason"}),
		jobRuns: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job runs by job and result.",
		}, []string{"job", "result"}),
		jobDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "job_duration_seconds",
			Help:      "Scheduled job run time.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"job"}),
		jobSkipped: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "job_skipped_total",
			Help:      "Scheduled ticks skipped because the previous run was still going.",
		}, []string{"job"}),
		jobLastSuccess: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run per job.",
		}, []string{"job"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveSourceFetch(platform contest.Platform, err error, records int, elapsed time.Duration) {
	label := platformLabel(platform)
	m.sourceFetches.WithLabelValues(label, resultLabel(err)).Inc()
	m.sourceFetchDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	if err == nil {
		m.sourceRecords.WithLabelValues(label).Set(float64(records))
	}
}

func (m *Metrics) ObserveStatsDegraded(platform contest.Platform, reason string) {
	m.statsDegraded.WithLabelValues(platformLabel(platform), reason).Inc()
}

func (m *Metrics) ObserveJobRun(job string, err error, elapsed time.Duration) {
	m.jobRuns.WithLabelValues(job, resultLabel(err)).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
	if err == nil {
		m.jobLastSuccess.WithLabelValues(job).SetToCurrentTime()
	}
}

func (m *Metrics) ObserveJobSkipped(job string) {
	m.jobSkipped.WithLabelValues(job).Inc()
}

// RegisterCacheStats exposes a read-through cache's counters, read at scrape time.
func (m *Metrics) RegisterCacheStats(name string, stats func() cache.Stats) {
	counters := []struct {
		name string
		help string
		read func(cache.Stats) uint64
	}{
		{"cache_hits_total", "Cache lookups answered from memory.", func(s cache.Stats) uint64 { return s.Hits }},
		{"cache_misses_total", "Cache lookups that fell through to the store.", func(s cache.Stats) uint64 { return s.Misses }},
		{"cache_loads_total", "Store reads performed to fill the cache.", func(s cache.Stats) uint64 { return s.Loads }},
	}
	for _, c := range counters {
		m.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        c.name,
			Help:        c.help,
			ConstLabels: prometheus.Labels{"cache": name},
		}, func() float64 { return float64(c.read(stats())) }))
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case usecase.IsSourceUnavailable(err):
		return "unavailable"
	default:
		return "error"
	}
}

func platformLabel(p contest.Platform) string {
	return strings.ToLower(string(p))
}

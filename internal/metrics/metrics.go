// Package metrics exposes Prometheus instrumentation for scans and loads.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds all scanner metrics.
type Recorder struct {
	registry *prometheus.Registry

	scansTotal    *prometheus.CounterVec
	symbolsTotal  *prometheus.CounterVec
	verdictsTotal *prometheus.CounterVec
	scanDuration  prometheus.Histogram
	fetchDuration *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
}

// New registers all metrics on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		scansTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trendedge_scans_total",
			Help: "Total scans run, by mode",
		}, []string{"mode"}),
		symbolsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trendedge_symbols_total",
			Help: "Symbols processed, by outcome",
		}, []string{"outcome"}),
		verdictsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trendedge_verdicts_total",
			Help: "Classified symbols, by verdict",
		}, []string{"verdict"}),
		scanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "trendedge_scan_duration_seconds",
			Help:    "Wall time of a full scan",
			Buckets: prometheus.DefBuckets,
		}),
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trendedge_fetch_duration_seconds",
			Help:    "Provider fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source", "status"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trendedge_cache_lookups_total",
			Help: "Price cache lookups, by result",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordScan records a completed scan.
func (r *Recorder) RecordScan(mode string, d time.Duration) {
	if r == nil {
		return
	}
	r.scansTotal.WithLabelValues(mode).Inc()
	r.scanDuration.Observe(d.Seconds())
}

// RecordSymbol records one symbol outcome (result, no_signal, or a failure kind).
func (r *Recorder) RecordSymbol(outcome string) {
	if r == nil {
		return
	}
	r.symbolsTotal.WithLabelValues(outcome).Inc()
}

// RecordVerdict records a classified verdict.
func (r *Recorder) RecordVerdict(verdict string) {
	if r == nil {
		return
	}
	r.verdictsTotal.WithLabelValues(verdict).Inc()
}

// RecordFetch records a provider call.
func (r *Recorder) RecordFetch(source string, d time.Duration, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.fetchDuration.WithLabelValues(source, status).Observe(d.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/pybundle/pkg/observability"
)

const namespace = "pybundle"

// Metrics implements the observability hooks on a private Prometheus
// registry. Register it with [Metrics.Install].
type Metrics struct {
	registry *prometheus.Registry

	stages        *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	files         prometheus.Counter
	requirements  prometheus.Histogram
	unknown       prometheus.Counter
	downloads     *prometheus.CounterVec
	cacheOps      *prometheus.CounterVec
	upstream      *prometheus.CounterVec
	requests      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them, plus the Go and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Pipeline stages started, by stage.",
		}, []string{"stage"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration, by stage and outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"stage", "outcome"}),
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scanned_files_total",
			Help:      "Source files scanned.",
		}),
		requirements: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "requirements",
			Help:      "Requirement set size per resolution.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		unknown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_packages_total",
			Help:      "Requirements the package index did not know.",
		}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Installer download invocations, by outcome.",
		}, []string{"outcome"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Index cache operations, by key type and result.",
		}, []string{"type", "result"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Outgoing index requests, by host and status code.",
		}, []string{"host", "code"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests served, by route and status code.",
		}, []string{"route", "code"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.stages, m.stageDuration, m.files, m.requirements, m.unknown,
		m.downloads, m.cacheOps, m.upstream, m.requests,
	)
	return m
}

// Install registers m as the process-wide pipeline, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) observe(stage string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(stage, outcome(err)).Observe(d.Seconds())
}

func (m *Metrics) OnStageStart(_ context.Context, stage string) {
	m.stages.WithLabelValues(stage).Inc()
}

func (m *Metrics) OnScanComplete(_ context.Context, files, _ int, d time.Duration, err error) {
	m.files.Add(float64(files))
	m.observe(observability.StageScan, d, err)
}

func (m *Metrics) OnResolveComplete(_ context.Context, requirements, _ int, d time.Duration) {
	m.requirements.Observe(float64(requirements))
	m.observe(observability.StageResolve, d, nil)
}

func (m *Metrics) OnVerifyComplete(_ context.Context, _, unknown int, d time.Duration, err error) {
	m.unknown.Add(float64(unknown))
	m.observe(observability.StageVerify, d, err)
}

func (m *Metrics) OnDownload(_ context.Context, _ string, _ time.Duration, err error) {
	m.downloads.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) OnBundleComplete(_ context.Context, _, _ int, d time.Duration, err error) {
	m.observe(observability.StageBundle, d, err)
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, code int, _ time.Duration) {
	m.upstream.WithLabelValues(host, strconv.Itoa(code)).Inc()
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.upstream.WithLabelValues(host, "error").Inc()
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

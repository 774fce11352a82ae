// Package prom implements the observability hooks with Prometheus
// collectors.
//
//	reg := prometheus.NewRegistry()
//	m := prom.New(reg)
//	observability.SetPipelineHooks(m)
//	observability.SetCacheHooks(m)
//	observability.SetHTTPHooks(m)
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/archview/pkg/observability"
)

const namespace = "archview"

// Metrics holds the collectors. It implements PipelineHooks, CacheHooks and
// HTTPHooks.
type Metrics struct {
	parses        *prometheus.CounterVec
	parseDuration *prometheus.HistogramVec
	graphNodes    prometheus.Histogram
	layoutSeconds prometheus.Histogram
	filters       *prometheus.CounterVec
	renders       *prometheus.CounterVec
	renderBytes   *prometheus.HistogramVec
	cacheOps      *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	requests      *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Labels: source (architecture, pattern), status (ok, error)
		parses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "parses_total",
			Help:      "Documents turned into graphs, by source and status",
		}, []string{"source", "status"}),
		parseDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "parse_duration_seconds",
			Help:      "Time to build and lay out a graph",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"source"}),
		graphNodes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "graph_nodes",
			Help:      "Node count of built graphs",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		layoutSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "layout_duration_seconds",
			Help:      "Time spent in the layout engine",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		// Labels: active (true, false)
		filters: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "filters_total",
			Help:      "Decision filters applied",
		}, []string{"active"}),
		// Labels: format (svg, dot), status (ok, error)
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "renders_total",
			Help:      "Rendered artifacts by format and status",
		}, []string{"format", "status"}),
		renderBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "artifact_bytes",
			Help:      "Size of rendered artifacts",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"format"}),
		// Labels: key_type (graph, render), result (hit, miss, set)
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache lookups and writes",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache",
		}, []string{"key_type"}),
		// Labels: method, route, code
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP API requests",
		}, []string{"method", "route", "code"}),
		requestTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP API latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnParseStart implements observability.PipelineHooks.
func (m *Metrics) OnParseStart(context.Context, string) {}

// OnParseComplete implements observability.PipelineHooks.
func (m *Metrics) OnParseComplete(_ context.Context, source string, nodes, _ int, d time.Duration, err error) {
	m.parses.WithLabelValues(source, status(err)).Inc()
	m.parseDuration.WithLabelValues(source).Observe(d.Seconds())
	if err == nil {
		m.graphNodes.Observe(float64(nodes))
	}
}

// OnLayoutComplete implements observability.PipelineHooks.
func (m *Metrics) OnLayoutComplete(_ context.Context, _ int, d time.Duration) {
	m.layoutSeconds.Observe(d.Seconds())
}

// OnFilter implements observability.PipelineHooks.
func (m *Metrics) OnFilter(_ context.Context, active bool, _ int) {
	label := "false"
	if active {
		label = "true"
	}
	m.filters.WithLabelValues(label).Inc()
}

// OnRenderComplete implements observability.PipelineHooks.
func (m *Metrics) OnRenderComplete(_ context.Context, format string, size int, _ time.Duration, err error) {
	m.renders.WithLabelValues(format, status(err)).Inc()
	if err == nil {
		m.renderBytes.WithLabelValues(format).Observe(float64(size))
	}
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (m *Metrics) OnRequest(_ context.Context, method, route string, code int, d time.Duration) {
	m.requests.WithLabelValues(method, route, statusCode(code)).Inc()
	m.requestTime.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

func statusCode(code int) string {
	return strconv.Itoa(code)
}

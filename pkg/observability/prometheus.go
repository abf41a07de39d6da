package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "robdd"

// Stage names used as the "stage" label.
const (
	StageBuild      = "build"
	StageCombine    = "combine"
	StageRender     = "render"
	StageExperiment = "experiment"
)

// PrometheusHooks implements every hook interface on top of Prometheus
// metrics.
type PrometheusHooks struct {
	StagesTotal     *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	DiagramNodes    *prometheus.HistogramVec
	CacheEvents     *prometheus.CounterVec
	CacheBytes      *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlight        prometheus.Gauge
}

// NewPrometheusHooks creates the metrics and registers them with reg. Passing
// a fresh prometheus.NewRegistry() keeps tests isolated.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		StagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "stages_total",
				Help:      "Pipeline stages run, by stage and status",
			},
			[]string{"stage", "status"},
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
			},
			[]string{"stage"},
		),
		DiagramNodes: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "diagram_nodes",
				Help:      "Node count of produced diagrams",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
			},
			[]string{"stage"},
		),
		CacheEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "cache",
				Name:      "events_total",
				Help:      "Cache lookups and writes, by key type and event",
			},
			[]string{"key_type", "event"},
		),
		CacheBytes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "cache",
				Name:      "written_bytes_total",
				Help:      "Bytes written to the cache, by key type",
			},
			[]string{"key_type"},
		),
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests handled, by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		InFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "in_flight_requests",
				Help:      "HTTP requests currently being handled",
			},
		),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (h *PrometheusHooks) complete(stage string, nodes int, d time.Duration, err error) {
	h.StagesTotal.WithLabelValues(stage, status(err)).Inc()
	h.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err == nil && nodes > 0 {
		h.DiagramNodes.WithLabelValues(stage).Observe(float64(nodes))
	}
}

func (h *PrometheusHooks) OnBuildStart(context.Context, int) {}

func (h *PrometheusHooks) OnBuildComplete(_ context.Context, _ int, nodes int, d time.Duration, err error) {
	h.complete(StageBuild, nodes, d, err)
}

func (h *PrometheusHooks) OnCombineStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnCombineComplete(_ context.Context, _ string, nodes int, d time.Duration, err error) {
	h.complete(StageCombine, nodes, d, err)
}

func (h *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	h.complete(StageRender, 0, d, err)
}

func (h *PrometheusHooks) OnExperimentStart(context.Context, int, int) {}

func (h *PrometheusHooks) OnExperimentComplete(_ context.Context, _ int, _ int, d time.Duration, err error) {
	h.complete(StageExperiment, 0, d, err)
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.CacheEvents.WithLabelValues(keyType, "set").Inc()
	h.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {
	h.InFlight.Inc()
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.InFlight.Dec()
	h.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)

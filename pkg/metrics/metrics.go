// Package metrics exports storekit events as Prometheus metrics.
//
// A [Recorder] implements the observability hook interfaces; register it
// once at startup:
//
//	rec := metrics.NewPrometheusRecorder(prometheus.DefaultRegisterer)
//	rec.Install()
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/storekit/pkg/buildinfo"
	"github.com/matzehuels/storekit/pkg/observability"
)

const namespace = "storekit"

// Recorder receives every storekit observability event.
type Recorder interface {
	observability.InspectorHooks
	observability.CacheHooks
	observability.HTTPHooks
}

// PrometheusRecorder records events into Prometheus collectors.
type PrometheusRecorder struct {
	syncTotal    *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
	outdated     *prometheus.GaugeVec
	lastSync     *prometheus.GaugeVec

	cacheTotal *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	httpTotal    *prometheus.CounterVec
	httpErrors   *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates a recorder and registers its collectors with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "update_sync_total",
			Help:      "Composer update checks by result.",
		}, []string{"result"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_sync_duration_seconds",
			Help:      "Duration of composer update checks.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"result"}),
		outdated: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outdated_packages",
			Help:      "Packages with a newer release after the last successful check.",
		}, []string{"root"}),
		lastSync: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "update_sync_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful update check.",
		}, []string{"root"}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by key type and result.",
		}, []string{"type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"type"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_requests_total",
			Help:      "Registry HTTP responses by host and status code.",
		}, []string{"host", "code"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_errors_total",
			Help:      "Registry HTTP requests that failed without a response.",
		}, []string{"host"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "registry_request_duration_seconds",
			Help:      "Registry HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
	}

	bi := buildinfo.Read()
	build := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "build_info",
		Help:        "Build metadata of the running binary. Always 1.",
		ConstLabels: prometheus.Labels{"version": bi.Version, "commit": bi.Commit, "goversion": bi.GoVersion},
	})
	build.Set(1)

	reg.MustRegister(
		build,
		r.syncTotal, r.syncDuration, r.outdated, r.lastSync,
		r.cacheTotal, r.cacheBytes,
		r.httpTotal, r.httpErrors, r.httpDuration,
	)
	return r
}

// Install registers r as the global observability hooks.
func (r *PrometheusRecorder) Install() {
	observability.SetInspectorHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

func (r *PrometheusRecorder) OnSyncStart(context.Context, string, string) {}

func (r *PrometheusRecorder) OnSyncComplete(_ context.Context, root, _ string, outdated int, d time.Duration, err error) {
	res := result(err)
	r.syncTotal.WithLabelValues(res).Inc()
	r.syncDuration.WithLabelValues(res).Observe(d.Seconds())
	if err != nil {
		return
	}
	r.outdated.WithLabelValues(root).Set(float64(outdated))
	r.lastSync.WithLabelValues(root).SetToCurrentTime()
}

func (r *PrometheusRecorder) OnCacheHit(_ context.Context, keyType string) {
	r.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (r *PrometheusRecorder) OnCacheMiss(_ context.Context, keyType string) {
	r.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (r *PrometheusRecorder) OnCacheSet(_ context.Context, keyType string, size int) {
	r.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (r *PrometheusRecorder) OnRequest(context.Context, string, string, string) {}

func (r *PrometheusRecorder) OnResponse(_ context.Context, _, host, _ string, statusCode int, d time.Duration) {
	r.httpTotal.WithLabelValues(host, strconv.Itoa(statusCode)).Inc()
	r.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (r *PrometheusRecorder) OnError(_ context.Context, _, host, _ string, _ error) {
	r.httpErrors.WithLabelValues(host).Inc()
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

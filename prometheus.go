package graphbuild

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector is a MetricsCollector backed by Prometheus metrics
// registered on its own registry. A build is a batch job without a scrape
// endpoint, so the metrics are usually flushed once with WriteToTextfile for
// node_exporter's textfile collector.
type PrometheusCollector struct {
	registry *prometheus.Registry

	stageDuration *prometheus.GaugeVec
	stageErrors   *prometheus.CounterVec
	passResolved  *prometheus.GaugeVec
	passDuration  prometheus.Histogram
	bucketDegree  prometheus.Histogram
	bucketDur     prometheus.Histogram
	vertices      prometheus.Gauge
	edges         prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

var _ MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates a collector whose metric names start with
// namespace (e.g. "graphbuild").
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	r := prometheus.NewRegistry()
	f := promauto.With(r)

	return &PrometheusCollector{
		stageDuration: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of the last run of each pipeline stage.",
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Number of failed pipeline stages.",
		}, []string{"stage"}),
		passResolved: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resolve_pass_tokens",
			Help:      "Tokens resolved by each resolution pass.",
		}, []string{"pass"}),
		passDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_pass_duration_seconds",
			Help:      "Duration of resolution passes.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		bucketDegree: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_bucket_degree_sum",
			Help:      "Sum of emitted degrees per merged bucket.",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 10),
		}),
		bucketDur: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_bucket_duration_seconds",
			Help:      "Duration of bucket merges.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		vertices: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vertices",
			Help:      "Vertex count N of the last successful build.",
		}),
		edges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "adjacency_entries",
			Help:      "Sum of degrees M of the last successful build.",
		}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful build.",
		}),
		registry: r,
	}
}

// Registry returns the registry holding the collector's metrics.
func (p *PrometheusCollector) Registry() *prometheus.Registry { return p.registry }

// WriteToTextfile writes all metrics in the text exposition format to
// filename, replacing it atomically.
func (p *PrometheusCollector) WriteToTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, p.registry)
}

// RecordStage implements MetricsCollector.
func (p *PrometheusCollector) RecordStage(stage string, duration time.Duration, err error) {
	p.stageDuration.WithLabelValues(stage).Set(duration.Seconds())
	if err != nil {
		p.stageErrors.WithLabelValues(stage).Inc()
	}
}

// RecordPass implements MetricsCollector.
func (p *PrometheusCollector) RecordPass(pass int, resolved int64, duration time.Duration) {
	p.passResolved.WithLabelValues(strconv.Itoa(pass)).Set(float64(resolved))
	p.passDuration.Observe(duration.Seconds())
}

// RecordBucket implements MetricsCollector.
func (p *PrometheusCollector) RecordBucket(_ int, _, degreeSum int64, duration time.Duration) {
	p.bucketDegree.Observe(float64(degreeSum))
	p.bucketDur.Observe(duration.Seconds())
}

// RecordResult implements MetricsCollector.
func (p *PrometheusCollector) RecordResult(n uint64, m int64) {
	p.vertices.Set(float64(n))
	p.edges.Set(float64(m))
	p.lastSuccess.SetToCurrentTime()
}

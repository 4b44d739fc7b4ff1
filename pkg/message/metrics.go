package message

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics receives codec accounting. Implementations must be safe for
// concurrent use.
type Metrics interface {
	// Encoded is called once per successful encode with the frame size.
	Encoded(op Op, mode Mode, frameBytes int)

	// EncodeFailed is called once per failed encode.
	EncodeFailed(op Op, mode Mode)

	// Compressed is called after each compressed encode with the field
	// byte counts before and after gzip.
	Compressed(op Op, uncompressed, compressed int)
}

type nopMetrics struct{}

func (nopMetrics) Encoded(Op, Mode, int)   {}
func (nopMetrics) EncodeFailed(Op, Mode)   {}
func (nopMetrics) Compressed(Op, int, int) {}

// frameSizeBuckets spans 64 B to 16 MiB.
var frameSizeBuckets = prometheus.ExponentialBuckets(64, 4, 10)

type metricsConfig struct {
	namespace string
	subsystem string
	registry  prometheus.Registerer
}

// MetricsOption configures NewPrometheusMetrics.
type MetricsOption func(*metricsConfig)

// WithNamespace overrides the "peerwire" namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *metricsConfig) { c.namespace = namespace }
}

// WithSubsystem overrides the "codec" subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *metricsConfig) { c.subsystem = subsystem }
}

// WithRegistry registers the collectors with r instead of
// prometheus.DefaultRegisterer.
func WithRegistry(r prometheus.Registerer) MetricsOption {
	return func(c *metricsConfig) { c.registry = r }
}

// PrometheusMetrics records codec activity as Prometheus metrics:
//
//   - <ns>_<sub>_frames_total{op,mode}: frames produced
//   - <ns>_<sub>_frame_bytes{op,mode}: frame size histogram
//   - <ns>_<sub>_encode_errors_total{op,mode}: failed encodes
//   - <ns>_<sub>_uncompressed_bytes_total{op}: field bytes before gzip
//   - <ns>_<sub>_compressed_bytes_total{op}: field bytes after gzip
type PrometheusMetrics struct {
	framesTotal       *prometheus.CounterVec
	frameBytes        *prometheus.HistogramVec
	encodeErrors      *prometheus.CounterVec
	uncompressedBytes *prometheus.CounterVec
	compressedBytes   *prometheus.CounterVec
}

// NewPrometheusMetrics registers the codec collectors. It panics if they
// are already registered with the chosen registry, like promauto.
func NewPrometheusMetrics(opts ...MetricsOption) *PrometheusMetrics {
	cfg := metricsConfig{
		namespace: "peerwire",
		subsystem: "codec",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.registry)

	return &PrometheusMetrics{
		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: cfg.subsystem,
			Name:      "frames_total",
			Help:      "Total number of frames encoded",
		}, []string{"op", "mode"}),

		frameBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Subsystem: cfg.subsystem,
			Name:      "frame_bytes",
			Help:      "Size of encoded frames in bytes, header included",
			Buckets:   frameSizeBuckets,
		}, []string{"op", "mode"}),

		encodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: cfg.subsystem,
			Name:      "encode_errors_total",
			Help:      "Total number of failed encodes",
		}, []string{"op", "mode"}),

		uncompressedBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: cfg.subsystem,
			Name:      "uncompressed_bytes_total",
			Help:      "Field bytes fed to gzip by compressed encodes",
		}, []string{"op"}),

		compressedBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: cfg.subsystem,
			Name:      "compressed_bytes_total",
			Help:      "Bytes produced by gzip in compressed encodes",
		}, []string{"op"}),
	}
}

// Encoded implements Metrics.
func (m *PrometheusMetrics) Encoded(op Op, mode Mode, frameBytes int) {
	m.framesTotal.WithLabelValues(op.String(), mode.String()).Inc()
	m.frameBytes.WithLabelValues(op.String(), mode.String()).Observe(float64(frameBytes))
}

// EncodeFailed implements Metrics.
func (m *PrometheusMetrics) EncodeFailed(op Op, mode Mode) {
	m.encodeErrors.WithLabelValues(op.String(), mode.String()).Inc()
}

// Compressed implements Metrics.
func (m *PrometheusMetrics) Compressed(op Op, uncompressed, compressed int) {
	m.uncompressedBytes.WithLabelValues(op.String()).Add(float64(uncompressed))
	m.compressedBytes.WithLabelValues(op.String()).Add(float64(compressed))
}

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/onsails/prosto/errs"
)

// Stage labels used by Metrics and in log fields.
const (
	StageCompress   = "compress"
	StageDecompress = "decompress"
)

// Values of the form label of bytes_total.
const (
	formSerialized = "serialized"
	formCompressed = "compressed"
)

// Metrics holds the prometheus collectors updated by stages and transforms.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	records   *prometheus.CounterVec
	chunks    *prometheus.CounterVec
	bytes     *prometheus.CounterVec
	errors    *prometheus.CounterVec
	chunkSize *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with registerer.
// If registerer is nil, the collectors are not registered.
func NewMetrics(registerer prometheus.Registerer, namespace, subsystem string) *Metrics {
	m := &Metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records_total",
			Help:      "Number of records passed through a stage",
		}, []string{"stage"}),
		chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "chunks_total",
			Help:      "Number of chunks produced or consumed by a stage",
		}, []string{"stage"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bytes_total",
			Help:      "Number of serialized and compressed chunk bytes handled by a stage",
		}, []string{"stage", "form"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Number of fatal stage errors by kind",
		}, []string{"stage", "kind"}),
		chunkSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "chunk_size_bytes",
			Help:      "Compressed size of chunks",
			Buckets:   prometheus.ExponentialBuckets(1024, 2, 12),
		}, []string{"stage"}),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.records,
			m.chunks,
			m.bytes,
			m.errors,
			m.chunkSize,
		)
	}

	return m
}

// recordRecords counts n records and the uncompressed chunk bytes they occupy, length
// prefixes included.
func (m *Metrics) recordRecords(stage string, n int, serialized int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(stage).Add(float64(n))
	m.bytes.WithLabelValues(stage, formSerialized).Add(float64(serialized))
}

func (m *Metrics) recordChunk(stage string, size int) {
	if m == nil {
		return
	}
	m.chunks.WithLabelValues(stage).Inc()
	m.bytes.WithLabelValues(stage, formCompressed).Add(float64(size))
	m.chunkSize.WithLabelValues(stage).Observe(float64(size))
}

func (m *Metrics) recordError(stage string, err error) {
	if m == nil || err == nil {
		return
	}
	m.errors.WithLabelValues(stage, errs.KindOf(err).String()).Inc()
}

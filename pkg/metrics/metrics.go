// Package metrics holds the prometheus collectors for ingestion and
// question answering. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pdf_rag"

// Query outcomes.
const (
	OutcomeAnswered         = "answered"
	OutcomeNoBackend        = "no_backend"
	OutcomeNoDocuments      = "no_documents"
	OutcomeGenerationFailed = "generation_failed"
	OutcomeError            = "error"
)

type Metrics struct {
	Queries            *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	RetrievedChunks    prometheus.Histogram
	DocumentsIngested  prometheus.Counter
	ChunksIndexed      prometheus.Counter
	IngestFailures     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.NewRegistry() in tests to keep the global registry clean.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Questions answered, by outcome.",
		}, []string{"outcome"}),
		GenerationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Backend generation latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"backend"}),
		RetrievedChunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieved_chunks",
			Help:      "Chunks retrieved per question.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
		DocumentsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_ingested_total",
			Help:      "Documents successfully indexed.",
		}),
		ChunksIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_indexed_total",
			Help:      "Chunks written to the vector store.",
		}),
		IngestFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_failures_total",
			Help:      "Rejected or failed uploads, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.Queries, m.GenerationDuration, m.RetrievedChunks, m.DocumentsIngested, m.ChunksIndexed, m.IngestFailures)
	return m
}

func (m *Metrics) ObserveQuery(outcome string, chunks int) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(outcome).Inc()
	m.RetrievedChunks.Observe(float64(chunks))
}

func (m *Metrics) ObserveGeneration(backend string, took time.Duration) {
	if m == nil {
		return
	}
	if backend == "" {
		backend = "default"
	}
	m.GenerationDuration.WithLabelValues(backend).Observe(took.Seconds())
}

func (m *Metrics) ObserveIngest(chunks int) {
	if m == nil {
		return
	}
	m.DocumentsIngested.Inc()
	m.ChunksIndexed.Add(float64(chunks))
}

func (m *Metrics) ObserveIngestFailure(reason string) {
	if m == nil {
		return
	}
	m.IngestFailures.WithLabelValues(reason).Inc()
}

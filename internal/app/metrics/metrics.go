// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChunksProcessed counts processed chunks by outcome
	// (ok, download_failed, invalid_audio, transcription_failed).
	ChunksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koenote_chunks_processed_total",
		Help: "Number of audio chunks processed, by outcome",
	}, []string{"outcome"})

	// SummarizerFallbacks counts summaries that degraded to fallback values.
	SummarizerFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "koenote_summarizer_fallbacks_total",
		Help: "Number of summaries that fell back to deterministic defaults",
	})

	// CombineDuration observes the latency of the combine operation.
	CombineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "koenote_combine_duration_seconds",
		Help:    "Latency of combining a session's chunk results",
		Buckets: prometheus.DefBuckets,
	})

	// SessionsCombined counts successful combine operations.
	SessionsCombined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "koenote_sessions_combined_total",
		Help: "Number of sessions combined into a final transcript",
	})
)

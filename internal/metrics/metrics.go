// Package metrics provides Prometheus metrics for narrator runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "narrator"
)

// Chunking metrics track document splitting.
var (
	// ChunksTotal is the total number of chunks produced by strategy.
	ChunksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chunks_total",
		Help:      "Total number of chunks produced",
	}, []string{"strategy"})

	// DocumentRunes is the rune length of the last normalized document.
	DocumentRunes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "document_runes",
		Help:      "Rune length of the last normalized document",
	})
)

// Stage metrics track pipeline stages.
var (
	// StageDuration is a histogram of stage duration in seconds.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of pipeline stages in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14), // 0.1s to ~27m
	}, []string{"stage"})

	// StageErrorsTotal is the total number of failed stages.
	StageErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stage_errors_total",
		Help:      "Total number of failed pipeline stages",
	}, []string{"stage"})

	// TranslateFallbacksTotal counts chunks written untranslated, by failure reason.
	TranslateFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "translate_fallbacks_total",
		Help:      "Total number of chunks written untranslated",
	}, []string{"reason"})

	// ScenesTotal is the total number of scenes extracted.
	ScenesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scenes_total",
		Help:      "Total number of scenes extracted",
	})

	// SegmentSkippedTotal counts chunks whose scenes could not be extracted.
	SegmentSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "segment_skipped_chunks_total",
		Help:      "Total number of chunks skipped during scene segmentation",
	}, []string{"reason"})

	// ArtifactsTotal counts media files written by kind.
	ArtifactsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "artifacts_total",
		Help:      "Total number of media artifacts written",
	}, []string{"kind"})
)

// Cache metrics track cache operations.
var (
	// CacheHitsTotal is the total number of cache hits by cache type.
	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total number of cache hits",
	}, []string{"cache"})

	// CacheMissesTotal is the total number of cache misses by cache type.
	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_misses_total",
		Help:      "Total number of cache misses",
	}, []string{"cache"})
)

// Provider metrics track AI provider API usage.
var (
	// ProviderRequestsTotal is the total number of provider API requests.
	ProviderRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Total number of provider API requests",
	}, []string{"provider", "operation"})

	// ProviderErrorsTotal is the total number of provider API errors.
	ProviderErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_errors_total",
		Help:      "Total number of provider API errors",
	}, []string{"provider", "operation", "reason"})

	// ProviderTokensTotal is the total number of tokens consumed.
	ProviderTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_tokens_total",
		Help:      "Total number of tokens consumed",
	}, []string{"provider"})

	// ProviderDuration is a histogram of provider request duration in seconds.
	ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_duration_seconds",
		Help:      "Duration of provider API requests in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~102s
	}, []string{"provider", "operation"})
)

// RecordChunks records a finished split.
func RecordChunks(strategy string, chunks, documentRunes int) {
	ChunksTotal.WithLabelValues(strategy).Add(float64(chunks))
	DocumentRunes.Set(float64(documentRunes))
}

// RecordStage records a pipeline stage.
func RecordStage(stage string, duration time.Duration, err error) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		StageErrorsTotal.WithLabelValues(stage).Inc()
	}
}

// RecordProviderRequest records a provider API request. reason is empty on success.
func RecordProviderRequest(provider, operation string, duration time.Duration, tokens int, reason string) {
	ProviderRequestsTotal.WithLabelValues(provider, operation).Inc()
	ProviderDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())

	if tokens > 0 {
		ProviderTokensTotal.WithLabelValues(provider).Add(float64(tokens))
	}
	if reason != "" {
		ProviderErrorsTotal.WithLabelValues(provider, operation, reason).Inc()
	}
}

// RecordCacheAccess records a cache access.
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues(cacheType).Inc()
	} else {
		CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}

// RecordTranslateFallback records a chunk written untranslated.
func RecordTranslateFallback(reason string) {
	TranslateFallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordScenes records scenes extracted.
func RecordScenes(scenes int) {
	ScenesTotal.Add(float64(scenes))
}

// RecordSegmentSkip records a chunk skipped during segmentation.
func RecordSegmentSkip(reason string) {
	SegmentSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordArtifact records a media file written.
func RecordArtifact(kind string) {
	ArtifactsTotal.WithLabelValues(kind).Inc()
}

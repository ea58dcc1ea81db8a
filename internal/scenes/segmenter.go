package scenes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leefowlercu/novel-narrator/internal/cache"
	"github.com/leefowlercu/novel-narrator/internal/chunkers"
	"github.com/leefowlercu/novel-narrator/internal/metrics"
	"github.com/leefowlercu/novel-narrator/internal/providers"
)

// Result is the outcome of segmenting one document.
type Result struct {
	// Scenes holds every extracted scene, numbered from 1.
	Scenes []Scene

	// TotalChunks is the number of chunks the document was split into.
	TotalChunks int

	// SkippedChunks lists chunk indexes whose scenes could not be extracted.
	SkippedChunks []int

	// CachedChunks counts chunks answered from the cache.
	CachedChunks int

	Duration time.Duration
}

// Segmenter splits a document into overlapping chunks and asks a model for the
// scenes in each, in order.
type Segmenter struct {
	extractor providers.SceneExtractor
	registry  *chunkers.Registry
	strategy  chunkers.Strategy
	policy    chunkers.Policy
	limiter   *providers.RateLimiter
	prompts   *PromptBuilder
	cache     *cache.SceneCache
	strict    bool
	logger    *slog.Logger
}

// SegmenterOption configures a Segmenter.
type SegmenterOption func(*Segmenter)

// WithChunking sets the chunking strategy and policy.
func WithChunking(strategy chunkers.Strategy, policy chunkers.Policy) SegmenterOption {
	return func(s *Segmenter) {
		s.strategy = strategy
		s.policy = policy
	}
}

// WithChunkerRegistry sets the chunker registry.
func WithChunkerRegistry(r *chunkers.Registry) SegmenterOption {
	return func(s *Segmenter) {
		s.registry = r
	}
}

// WithDelay sets the fixed gap between consecutive model calls.
func WithDelay(d time.Duration) SegmenterOption {
	return func(s *Segmenter) {
		s.limiter = providers.NewRateLimiter(providers.RateLimitConfig{MinInterval: d})
	}
}

// WithPromptBuilder sets the prompt builder.
func WithPromptBuilder(b *PromptBuilder) SegmenterOption {
	return func(s *Segmenter) {
		s.prompts = b
	}
}

// WithCache enables response caching.
func WithCache(c *cache.SceneCache) SegmenterOption {
	return func(s *Segmenter) {
		s.cache = c
	}
}

// WithStrict makes any chunk failure abort segmentation.
func WithStrict(strict bool) SegmenterOption {
	return func(s *Segmenter) {
		s.strict = strict
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SegmenterOption {
	return func(s *Segmenter) {
		s.logger = logger
	}
}

// NewSegmenter creates a Segmenter backed by extractor.
func NewSegmenter(extractor providers.SceneExtractor, opts ...SegmenterOption) (*Segmenter, error) {
	if extractor == nil {
		return nil, errors.New("scene extractor is required")
	}

	s := &Segmenter{
		extractor: extractor,
		registry:  chunkers.DefaultRegistry(),
		strategy:  chunkers.StrategyOverlap,
		policy:    chunkers.SegmentPolicy(),
		limiter:   providers.NewRateLimiter(providers.RateLimitConfig{}),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.prompts == nil {
		b, err := NewPromptBuilder("")
		if err != nil {
			return nil, err
		}
		s.prompts = b
	}
	if err := s.policy.Validate(s.strategy); err != nil {
		return nil, err
	}

	s.logger = s.logger.With("component", "segmenter")
	return s, nil
}

// Segment extracts scenes from text. A chunk whose call or response fails is
// logged and skipped unless the segmenter is strict. Context cancellation always
// stops segmentation.
func (s *Segmenter) Segment(ctx context.Context, text string) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return nil, chunkers.ErrEmptyDocument
	}

	split, err := s.registry.Split(ctx, s.strategy, text, s.policy)
	if err != nil {
		return nil, err
	}
	if split.TotalChunks == 0 {
		return nil, chunkers.ErrEmptyDocument
	}
	metrics.RecordChunks(string(split.ChunkerUsed), split.TotalChunks, split.NormalizedLength)

	result := &Result{
		Scenes:      []Scene{},
		TotalChunks: split.TotalChunks,
	}

	for _, chunk := range split.Chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		list, cached, err := s.segmentChunk(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil || s.strict {
				return nil, fmt.Errorf("chunk %d/%d; %w", chunk.Index+1, split.TotalChunks, err)
			}

			reason := string(providers.ReasonOf(err))
			if reason == "" && errors.Is(err, ErrMalformedScenes) {
				reason = string(providers.ReasonMalformedResponse)
			}
			if reason == "" {
				reason = "unknown"
			}
			s.logger.Warn("skipping chunk",
				"chunk", chunk.Index+1,
				"total", split.TotalChunks,
				"reason", reason,
				"error", err)
			metrics.RecordSegmentSkip(reason)
			result.SkippedChunks = append(result.SkippedChunks, chunk.Index)
			continue
		}

		if cached {
			result.CachedChunks++
		}
		s.logger.Debug("chunk segmented", "chunk", chunk.Index+1, "total", split.TotalChunks, "scenes", len(list), "cached", cached)
		result.Scenes = append(result.Scenes, list...)
	}

	Renumber(result.Scenes)
	metrics.RecordScenes(len(result.Scenes))
	result.Duration = time.Since(start)

	s.logger.Info("segmentation complete",
		"scenes", len(result.Scenes),
		"chunks", result.TotalChunks,
		"skipped", len(result.SkippedChunks),
		"cached", result.CachedChunks)

	return result, nil
}

// segmentChunk returns the scenes for one chunk and whether they came from the cache.
func (s *Segmenter) segmentChunk(ctx context.Context, chunk chunkers.Chunk) ([]Scene, bool, error) {
	prompt, err := s.prompts.Build(chunk.Content, chunk.Index)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if entry, err := s.cache.Get(prompt); err == nil {
			if list, err := Parse(entry.Content); err == nil {
				return list, true, nil
			}
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	resp, err := s.extractor.ExtractScenes(ctx, providers.SceneRequest{
		Prompt:     prompt,
		ChunkIndex: chunk.Index,
	})
	if err != nil {
		return nil, false, err
	}

	// A cut-off answer may still parse but is missing scenes; never keep it.
	if resp.Truncated {
		return nil, false, providers.NewCallError(resp.ProviderName, "scenes", providers.ReasonTruncated,
			fmt.Errorf("%w; response was truncated", ErrMalformedScenes))
	}

	list, err := Parse(resp.Content)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		entry := &cache.SceneEntry{
			Content:      resp.Content,
			ProviderName: resp.ProviderName,
			ModelName:    resp.ModelName,
		}
		if err := s.cache.Set(prompt, entry); err != nil {
			s.logger.Warn("failed to cache scene response", "chunk", chunk.Index+1, "error", err)
		}
	}

	return list, false, nil
}

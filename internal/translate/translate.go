// Package translate translates long documents chunk by chunk, streaming results
// to a writer in document order.
package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/leefowlercu/novel-narrator/internal/cache"
	"github.com/leefowlercu/novel-narrator/internal/chunkers"
	"github.com/leefowlercu/novel-narrator/internal/metrics"
	"github.com/leefowlercu/novel-narrator/internal/providers"
)

// FallbackPolicy decides what happens when a chunk cannot be translated.
type FallbackPolicy string

const (
	// FallbackVerbatim writes the untranslated chunk and continues.
	FallbackVerbatim FallbackPolicy = "verbatim"

	// FallbackFail stops and returns the error.
	FallbackFail FallbackPolicy = "fail"
)

// ParseFallback converts a configured name to a FallbackPolicy.
func ParseFallback(s string) (FallbackPolicy, error) {
	switch FallbackPolicy(s) {
	case FallbackVerbatim, FallbackFail:
		return FallbackPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown fallback policy %q; must be one of: verbatim, fail", s)
	}
}

// Report summarizes a translation run.
type Report struct {
	TotalChunks int
	StartIndex  int
	Translated  int
	Cached      int
	Fallbacks   int
	Truncated   int

	// FallbackChunks lists the indexes written untranslated.
	FallbackChunks []int

	// NextIndex is the first chunk not yet written. It equals TotalChunks after a
	// complete run and is the start index for resuming a stopped one.
	NextIndex int

	Duration time.Duration
}

// ChunkError reports the chunk that stopped a translation. Index is 0-based, as
// accepted by WithStartIndex.
type ChunkError struct {
	Index int
	Total int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk index %d of %d chunks; %v", e.Index, e.Total, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Progress is reported after each chunk is written.
type Progress struct {
	Index    int
	Total    int
	Cached   bool
	Fallback bool
}

// Pipeline translates documents with a single translator.
type Pipeline struct {
	translator providers.Translator
	language   string
	policy     chunkers.Policy
	limiter    *providers.RateLimiter
	cache      *cache.TranslationCache
	fallback   FallbackPolicy
	startIndex int
	progress   func(Progress)
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPolicy sets the sentence chunking policy.
func WithPolicy(policy chunkers.Policy) Option {
	return func(p *Pipeline) {
		p.policy = policy
	}
}

// WithDelay sets the fixed gap between consecutive translator calls.
func WithDelay(d time.Duration) Option {
	return func(p *Pipeline) {
		p.limiter = providers.NewRateLimiter(providers.RateLimitConfig{MinInterval: d})
	}
}

// WithCache enables the translation cache.
func WithCache(c *cache.TranslationCache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithFallback sets the fallback policy.
func WithFallback(f FallbackPolicy) Option {
	return func(p *Pipeline) {
		p.fallback = f
	}
}

// WithStartIndex skips chunks before index, for resuming an interrupted run.
func WithStartIndex(index int) Option {
	return func(p *Pipeline) {
		p.startIndex = index
	}
}

// WithProgress registers a callback invoked after each chunk is written.
func WithProgress(fn func(Progress)) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline translating into language.
func New(translator providers.Translator, language string, opts ...Option) (*Pipeline, error) {
	if translator == nil {
		return nil, errors.New("translator is required")
	}
	if strings.TrimSpace(language) == "" {
		return nil, errors.New("target language is required")
	}

	p := &Pipeline{
		translator: translator,
		language:   language,
		policy:     chunkers.TranslatePolicy(),
		limiter:    providers.NewRateLimiter(providers.RateLimitConfig{}),
		fallback:   FallbackVerbatim,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := p.policy.Validate(chunkers.StrategySentence); err != nil {
		return nil, err
	}
	if _, err := ParseFallback(string(p.fallback)); err != nil {
		return nil, err
	}
	if p.startIndex < 0 {
		return nil, fmt.Errorf("start index must be non-negative, got %d", p.startIndex)
	}

	p.logger = p.logger.With("component", "translate", "language", language)
	return p, nil
}

// Translate splits text at sentence boundaries and writes each chunk's
// translation followed by a line feed to w, in order, as soon as it is ready.
func (p *Pipeline) Translate(ctx context.Context, text string, w io.Writer) (*Report, error) {
	start := time.Now()

	chunks, err := chunkers.NewSentenceChunker().Chunk(ctx, text, p.policy)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, chunkers.ErrEmptyDocument
	}
	metrics.RecordChunks(string(chunkers.StrategySentence), len(chunks), chunks[len(chunks)-1].EndOffset)

	if p.startIndex > len(chunks) {
		return nil, fmt.Errorf("start index %d beyond last chunk %d", p.startIndex, len(chunks)-1)
	}

	report := &Report{
		TotalChunks: len(chunks),
		StartIndex:  p.startIndex,
		NextIndex:   p.startIndex,
	}

	for _, chunk := range chunks[p.startIndex:] {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		res, err := p.translateChunk(ctx, chunk, len(chunks))
		fellBack := false
		switch {
		case err == nil:
			if res.cached {
				report.Cached++
			} else {
				report.Translated++
			}
			if res.truncated {
				report.Truncated++
			}
		case ctx.Err() != nil || p.fallback == FallbackFail:
			report.Duration = time.Since(start)
			return report, &ChunkError{Index: chunk.Index, Total: len(chunks), Err: err}
		default:
			reason := providers.ReasonOf(err)
			if reason == "" {
				reason = providers.ReasonAPIError
			}
			p.logger.Warn("writing chunk untranslated",
				"chunk", chunk.Index+1,
				"total", len(chunks),
				"reason", reason,
				"error", err)
			metrics.RecordTranslateFallback(string(reason))

			res = chunkResult{text: chunk.Content}
			fellBack = true
			report.Fallbacks++
			report.FallbackChunks = append(report.FallbackChunks, chunk.Index)
		}

		if err := writeChunk(w, res.text); err != nil {
			report.Duration = time.Since(start)
			return report, &ChunkError{Index: chunk.Index, Total: len(chunks), Err: fmt.Errorf("failed to write; %w", err)}
		}
		report.NextIndex = chunk.Index + 1

		if p.progress != nil {
			p.progress(Progress{Index: chunk.Index, Total: len(chunks), Cached: res.cached, Fallback: fellBack})
		}
	}

	report.Duration = time.Since(start)
	p.logger.Info("translation complete",
		"chunks", report.TotalChunks,
		"translated", report.Translated,
		"cached", report.Cached,
		"fallbacks", report.Fallbacks,
		"truncated", report.Truncated,
		"duration", report.Duration)

	return report, nil
}

type chunkResult struct {
	text      string
	cached    bool
	truncated bool
}

// translateChunk returns the translation of one chunk.
func (p *Pipeline) translateChunk(ctx context.Context, chunk chunkers.Chunk, total int) (chunkResult, error) {
	if p.cache != nil {
		if entry, err := p.cache.Get(chunk.Content); err == nil {
			p.logger.Debug("translation cache hit", "chunk", chunk.Index+1, "total", total)
			return chunkResult{text: entry.Text, cached: true}, nil
		}
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return chunkResult{}, err
	}

	p.logger.Debug("translating chunk", "chunk", chunk.Index+1, "total", total)
	result, err := p.translator.Translate(ctx, providers.TranslateRequest{
		Text:           chunk.Content,
		TargetLanguage: p.language,
		ChunkIndex:     chunk.Index,
	})
	if err != nil {
		return chunkResult{}, err
	}

	if p.cache != nil && !result.Truncated {
		entry := &cache.TranslationEntry{
			Text:           result.Text,
			TargetLanguage: p.language,
			ProviderName:   result.ProviderName,
			ModelName:      result.ModelName,
		}
		if err := p.cache.Set(chunk.Content, entry); err != nil {
			p.logger.Warn("failed to cache translation", "chunk", chunk.Index+1, "error", err)
		}
	}

	return chunkResult{text: result.Text, truncated: result.Truncated}, nil
}

type flusher interface {
	Flush() error
}

func writeChunk(w io.Writer, text string) error {
	if _, err := io.WriteString(w, text+"\n"); err != nil {
		return err
	}
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

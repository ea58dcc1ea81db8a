package chunkers

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidPolicy is returned when a Policy cannot produce chunks.
	ErrInvalidPolicy = errors.New("invalid chunking policy")

	// ErrEmptyDocument is returned by callers that require at least one chunk.
	// Split itself returns an empty result for an empty document.
	ErrEmptyDocument = errors.New("empty document")
)

// Strategy names a chunking variant.
type Strategy string

const (
	StrategySentence  Strategy = "sentence"
	StrategyOverlap   Strategy = "overlap"
	StrategyRecursive Strategy = "recursive"
)

// Chunk represents a contiguous span of the normalized document.
type Chunk struct {
	// Index is the zero-based position in the sequence.
	Index int

	// Content is the chunk text. Sentence chunks are trimmed of surrounding whitespace.
	Content string

	// StartOffset is the rune offset where this chunk begins in the normalized text.
	StartOffset int

	// EndOffset is the rune offset (exclusive) where this chunk ends in the normalized text.
	EndOffset int

	// Metadata contains chunk-specific information.
	Metadata ChunkMetadata
}

// ChunkMetadata contains additional information about a chunk.
type ChunkMetadata struct {
	// Strategy is the variant that produced the chunk.
	Strategy Strategy

	// TokenEstimate is an estimated token count for this chunk.
	TokenEstimate int
}

// Policy configures chunking behavior.
type Policy struct {
	// TargetSize is the desired chunk length in characters.
	TargetSize int

	// SearchRadius is how far before and after the naive cut point the sentence
	// variant looks for a terminator.
	SearchRadius int

	// Overlap is the number of trailing characters of one chunk repeated at the
	// start of the next. Zero for the sentence variant.
	Overlap int

	// Terminators lists the runes that end a sentence.
	Terminators string
}

// DefaultTerminators is the terminator set used when a Policy leaves it empty.
const DefaultTerminators = "."

// TranslatePolicy returns the sentence-boundary defaults used ahead of translation.
func TranslatePolicy() Policy {
	return Policy{
		TargetSize:   1000,
		SearchRadius: 100,
		Terminators:  DefaultTerminators,
	}
}

// SegmentPolicy returns the size/overlap defaults used ahead of scene segmentation.
func SegmentPolicy() Policy {
	return Policy{
		TargetSize: 2000,
		Overlap:    200,
	}
}

// Validate reports whether the policy can be used by the given strategy.
func (p Policy) Validate(strategy Strategy) error {
	if p.TargetSize <= 0 {
		return fmt.Errorf("%w; target size must be positive, got %d", ErrInvalidPolicy, p.TargetSize)
	}
	if p.SearchRadius < 0 {
		return fmt.Errorf("%w; search radius must be non-negative, got %d", ErrInvalidPolicy, p.SearchRadius)
	}
	if p.Overlap < 0 {
		return fmt.Errorf("%w; overlap must be non-negative, got %d", ErrInvalidPolicy, p.Overlap)
	}
	if p.Overlap >= p.TargetSize {
		return fmt.Errorf("%w; overlap %d must be smaller than target size %d", ErrInvalidPolicy, p.Overlap, p.TargetSize)
	}
	if strategy == StrategySentence && p.Overlap != 0 {
		return fmt.Errorf("%w; sentence chunks do not overlap, got overlap %d", ErrInvalidPolicy, p.Overlap)
	}
	return nil
}

// terminators returns the configured terminator set or the default.
func (p Policy) terminators() string {
	if p.Terminators == "" {
		return DefaultTerminators
	}
	return p.Terminators
}

// Chunker splits a document into ordered chunks.
type Chunker interface {
	// Name returns the chunker's identifier.
	Name() Strategy

	// Chunk normalizes text and splits it according to the policy.
	Chunk(ctx context.Context, text string, policy Policy) ([]Chunk, error)
}

// ChunkResult contains the result of chunking an entire document.
type ChunkResult struct {
	// Chunks is the list of chunks.
	Chunks []Chunk

	// TotalChunks is the total number of chunks.
	TotalChunks int

	// ChunkerUsed is the name of the chunker that produced these chunks.
	ChunkerUsed Strategy

	// NormalizedLength is the rune length of the normalized document.
	NormalizedLength int
}

// Contents returns the chunk texts in order.
func (r *ChunkResult) Contents() []string {
	out := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		out[i] = c.Content
	}
	return out
}

// Split chunks text with the sentence-boundary variant.
func Split(text string, policy Policy) ([]Chunk, error) {
	return NewSentenceChunker().Chunk(context.Background(), text, policy)
}

// SplitOverlap chunks text with the size/overlap variant.
func SplitOverlap(text string, policy Policy) ([]Chunk, error) {
	return NewOverlapChunker().Chunk(context.Background(), text, policy)
}

package chunkers

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

const recursiveChunkerName = StrategyRecursive

// Default separators in order of preference (largest to smallest boundaries).
var defaultSeparators = []string{
	"\n\n", // Paragraph
	"\n",   // Line
	". ",   // Sentence end
	" ",    // Word
	"",     // Character level (last resort)
}

// RecursiveChunker splits content by progressively smaller separators while keeping
// chunks within TargetSize and repeating up to Overlap characters between neighbours.
type RecursiveChunker struct {
	separators []string
}

// NewRecursiveChunker creates a new recursive boundary chunker.
func NewRecursiveChunker() *RecursiveChunker {
	return &RecursiveChunker{
		separators: defaultSeparators,
	}
}

// Name returns the chunker's identifier.
func (c *RecursiveChunker) Name() Strategy {
	return recursiveChunkerName
}

// Chunk splits content recursively using separators.
func (c *RecursiveChunker) Chunk(ctx context.Context, text string, policy Policy) ([]Chunk, error) {
	if err := policy.Validate(StrategyRecursive); err != nil {
		return nil, err
	}

	normalized := Normalize(text)
	if normalized == "" {
		return []Chunk{}, nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(policy.TargetSize),
		textsplitter.WithChunkOverlap(policy.Overlap),
		textsplitter.WithSeparators(c.separators),
	)

	parts, err := splitter.SplitText(normalized)
	if err != nil {
		return nil, fmt.Errorf("recursive split failed; %w", err)
	}

	chunks := make([]Chunk, 0, len(parts))
	cursor := 0    // byte offset where the next search begins
	lastStart := 0 // rune offset of the previous chunk

	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(part) == "" {
			continue
		}

		start := lastStart
		if idx := strings.Index(normalized[cursor:], part); idx >= 0 {
			byteStart := cursor + idx
			start = utf8.RuneCountInString(normalized[:byteStart])
			_, size := utf8.DecodeRuneInString(normalized[byteStart:])
			cursor = byteStart + size
		}
		lastStart = start

		chunks = append(chunks, Chunk{
			Index:       len(chunks),
			Content:     part,
			StartOffset: start,
			EndOffset:   start + utf8.RuneCountInString(part),
			Metadata: ChunkMetadata{
				Strategy:      StrategyRecursive,
				TokenEstimate: EstimateTokens(part),
			},
		})
	}

	return chunks, nil
}

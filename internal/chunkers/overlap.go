package chunkers

import (
	"context"
)

const overlapChunkerName = StrategyOverlap

// OverlapChunker provides fixed-size windows with a constant overlap.
// Used ahead of scene segmentation to keep prompts within model input limits.
type OverlapChunker struct{}

// NewOverlapChunker creates a new size/overlap chunker.
func NewOverlapChunker() *OverlapChunker {
	return &OverlapChunker{}
}

// Name returns the chunker's identifier.
func (c *OverlapChunker) Name() Strategy {
	return overlapChunkerName
}

// Chunk splits text into TargetSize windows, each starting Overlap characters before
// the end of the previous one. Once the remaining text fits in one window it becomes
// the final chunk verbatim.
func (c *OverlapChunker) Chunk(ctx context.Context, text string, policy Policy) ([]Chunk, error) {
	if err := policy.Validate(StrategyOverlap); err != nil {
		return nil, err
	}

	runes := []rune(Normalize(text))
	if len(runes) == 0 {
		return []Chunk{}, nil
	}

	step := policy.TargetSize - policy.Overlap
	chunks := make([]Chunk, 0, len(runes)/step+1)

	for offset := 0; offset < len(runes); offset += step {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(offset+policy.TargetSize, len(runes))
		content := string(runes[offset:end])
		chunks = append(chunks, Chunk{
			Index:       len(chunks),
			Content:     content,
			StartOffset: offset,
			EndOffset:   end,
			Metadata: ChunkMetadata{
				Strategy:      StrategyOverlap,
				TokenEstimate: EstimateTokens(content),
			},
		})

		if end >= len(runes) {
			break
		}
	}

	return chunks, nil
}

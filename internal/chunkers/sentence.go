package chunkers

import (
	"context"
	"strings"
)

const sentenceChunkerName = StrategySentence

// SentenceChunker splits text into chunks close to a target size, cutting just after
// a sentence terminator near the naive cut point when one exists.
type SentenceChunker struct{}

// NewSentenceChunker creates a new sentence-boundary chunker.
func NewSentenceChunker() *SentenceChunker {
	return &SentenceChunker{}
}

// Name returns the chunker's identifier.
func (c *SentenceChunker) Name() Strategy {
	return sentenceChunkerName
}

// Chunk splits text at sentence boundaries.
// Chunk spans cover the normalized text without gaps or overlaps; whitespace-only
// spans are not emitted and are absorbed by the neighbouring chunk's span.
func (c *SentenceChunker) Chunk(ctx context.Context, text string, policy Policy) ([]Chunk, error) {
	if err := policy.Validate(StrategySentence); err != nil {
		return nil, err
	}

	runes := []rune(Normalize(text))
	if len(runes) == 0 {
		return []Chunk{}, nil
	}

	terms := policy.terminators()
	chunks := make([]Chunk, 0, len(runes)/policy.TargetSize+1)

	// pending is the first offset not yet covered by an emitted chunk.
	pending := 0
	emit := func(cut int) {
		content := strings.TrimSpace(string(runes[pending:cut]))
		if content == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Index:       len(chunks),
			Content:     content,
			StartOffset: pending,
			EndOffset:   cut,
			Metadata: ChunkMetadata{
				Strategy:      StrategySentence,
				TokenEstimate: EstimateTokens(content),
			},
		})
		pending = cut
	}

	for start := 0; start < len(runes); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + policy.TargetSize
		if end >= len(runes) {
			emit(len(runes))
			break
		}

		cut := findCut(runes, start, end, policy.SearchRadius, terms)
		emit(cut)
		start = cut
	}

	// A skipped whitespace tail still belongs to the document.
	if n := len(chunks); n > 0 && chunks[n-1].EndOffset < len(runes) {
		chunks[n-1].EndOffset = len(runes)
	}

	return chunks, nil
}

// findCut returns the offset just past the chosen terminator. The backward search
// takes the last terminator in [start, end+radius); the forward search takes the
// first terminator in [end-radius, end+radius). Both windows are half-open and
// clamped to the text. When both find one, the cut nearer to end wins and ties go
// to the earlier cut; when neither does, the cut is end. The result is always
// greater than start.
func findCut(runes []rune, start, end, radius int, terms string) int {
	hi := min(len(runes), end+radius)

	backward := lastIndex(runes, start, hi, terms)
	forward := firstIndex(runes, max(start, end-radius), hi, terms)

	cut := end
	switch {
	case backward >= 0 && forward >= 0:
		bCut, fCut := backward+1, forward+1
		if abs(bCut-end) < abs(fCut-end) {
			cut = bCut
		} else {
			cut = fCut
		}
	case backward >= 0:
		cut = backward + 1
	case forward >= 0:
		cut = forward + 1
	}

	if cut <= start {
		cut = end
	}
	return cut
}

// lastIndex returns the index of the last terminator in runes[lo:hi], or -1.
func lastIndex(runes []rune, lo, hi int, terms string) int {
	for i := hi - 1; i >= lo; i-- {
		if strings.ContainsRune(terms, runes[i]) {
			return i
		}
	}
	return -1
}

// firstIndex returns the index of the first terminator in runes[lo:hi], or -1.
func firstIndex(runes []rune, lo, hi int, terms string) int {
	for i := lo; i < hi; i++ {
		if strings.ContainsRune(terms, runes[i]) {
			return i
		}
	}
	return -1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

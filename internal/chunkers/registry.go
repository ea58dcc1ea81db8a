package chunkers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"
)

// Registry manages available chunkers by strategy name.
type Registry struct {
	mu       sync.RWMutex
	chunkers map[Strategy]Chunker
}

// NewRegistry creates a new chunker registry.
func NewRegistry() *Registry {
	return &Registry{
		chunkers: make(map[Strategy]Chunker),
	}
}

// Register adds a chunker to the registry, replacing any chunker with the same name.
func (r *Registry) Register(c Chunker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunkers[c.Name()] = c
}

// Get returns the chunker registered for the strategy.
func (r *Registry) Get(strategy Strategy) (Chunker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chunkers[strategy]
	return c, ok
}

// Split chunks text with the named strategy.
func (r *Registry) Split(ctx context.Context, strategy Strategy, text string, policy Policy) (*ChunkResult, error) {
	chunker, ok := r.Get(strategy)
	if !ok {
		return nil, fmt.Errorf("no chunker registered for strategy %q", strategy)
	}

	chunks, err := chunker.Chunk(ctx, text, policy)
	if err != nil {
		return nil, fmt.Errorf("chunking failed; %w", err)
	}

	return &ChunkResult{
		Chunks:           chunks,
		TotalChunks:      len(chunks),
		ChunkerUsed:      chunker.Name(),
		NormalizedLength: utf8.RuneCountInString(Normalize(text)),
	}, nil
}

// List returns the registered strategy names in sorted order.
func (r *Registry) List() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Strategy, 0, len(r.chunkers))
	for name := range r.chunkers {
		result = append(result, name)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// ParseStrategy converts a configured name to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategySentence, StrategyOverlap, StrategyRecursive:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown chunking strategy %q; must be one of: sentence, overlap, recursive", s)
	}
}

// DefaultRegistry creates a registry with all standard chunkers registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewSentenceChunker())
	r.Register(NewOverlapChunker())
	r.Register(NewRecursiveChunker())
	return r
}

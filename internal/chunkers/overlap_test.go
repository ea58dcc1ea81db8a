package chunkers

import (
	"errors"
	"strings"
	"testing"
)

func TestOverlapChunker_Name(t *testing.T) {
	if got := NewOverlapChunker().Name(); got != StrategyOverlap {
		t.Errorf("Name() = %q, want %q", got, StrategyOverlap)
	}
}

func TestSplitOverlap_Windows(t *testing.T) {
	text := strings.Repeat("0123456789", 500) // 5000 characters
	chunks, err := SplitOverlap(text, Policy{TargetSize: 1000, Overlap: 200})
	if err != nil {
		t.Fatalf("SplitOverlap() error = %v", err)
	}

	wantStarts := []int{0, 800, 1600, 2400, 3200, 4000}
	if len(chunks) != len(wantStarts) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(wantStarts))
	}

	for i, c := range chunks {
		if c.StartOffset != wantStarts[i] {
			t.Errorf("chunk %d starts at %d, want %d", i, c.StartOffset, wantStarts[i])
		}
		if n := len([]rune(c.Content)); n != 1000 {
			t.Errorf("chunk %d has %d characters, want 1000", i, n)
		}
		if c.Content != text[c.StartOffset:c.EndOffset] {
			t.Errorf("chunk %d content does not match its span", i)
		}
	}
}

func TestSplitOverlap_OverlapInvariant(t *testing.T) {
	tests := []struct {
		name   string
		length int
		policy Policy
	}{
		{"no overlap", 95, Policy{TargetSize: 10}},
		{"small overlap", 1234, Policy{TargetSize: 100, Overlap: 7}},
		{"large overlap", 300, Policy{TargetSize: 50, Overlap: 49}},
		{"shorter than target", 40, Policy{TargetSize: 100, Overlap: 20}},
		{"exact multiple", 180, Policy{TargetSize: 100, Overlap: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("x", tt.length)
			chunks, err := SplitOverlap(text, tt.policy)
			if err != nil {
				t.Fatalf("SplitOverlap() error = %v", err)
			}

			if chunks[0].StartOffset != 0 {
				t.Errorf("first chunk starts at %d", chunks[0].StartOffset)
			}
			if last := chunks[len(chunks)-1]; last.EndOffset != tt.length {
				t.Errorf("last chunk ends at %d, want %d", last.EndOffset, tt.length)
			}
			for i := 0; i+1 < len(chunks); i++ {
				if got := chunks[i].EndOffset - chunks[i+1].StartOffset; got != tt.policy.Overlap {
					t.Errorf("overlap between %d and %d = %d, want %d", i, i+1, got, tt.policy.Overlap)
				}
				if n := chunks[i].EndOffset - chunks[i].StartOffset; n != tt.policy.TargetSize {
					t.Errorf("chunk %d spans %d characters, want %d", i, n, tt.policy.TargetSize)
				}
			}
		})
	}
}

func TestSplitOverlap_TailVerbatim(t *testing.T) {
	text := "First paragraph.\n\n   indented tail   "
	chunks, err := SplitOverlap(text, Policy{TargetSize: 20, Overlap: 5})
	if err != nil {
		t.Fatalf("SplitOverlap() error = %v", err)
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last.Content, "tail   ") {
		t.Errorf("tail chunk %q should keep trailing whitespace", last.Content)
	}
}

func TestSplitOverlap_NormalizesLineBreaks(t *testing.T) {
	chunks, err := SplitOverlap("a\r\nb\rc\n\n\n\nd", Policy{TargetSize: 100})
	if err != nil {
		t.Fatalf("SplitOverlap() error = %v", err)
	}
	if chunks[0].Content != "a\n\nb\n\nc\n\nd" {
		t.Errorf("Content = %q", chunks[0].Content)
	}
}

func TestSplitOverlap_EmptyDocument(t *testing.T) {
	chunks, err := SplitOverlap("", SegmentPolicy())
	if err != nil {
		t.Fatalf("SplitOverlap() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("got %d chunks for empty text", len(chunks))
	}
}

func TestSplitOverlap_InvalidPolicy(t *testing.T) {
	tests := []Policy{
		{TargetSize: 0},
		{TargetSize: 10, Overlap: 10},
		{TargetSize: 10, Overlap: 11},
		{TargetSize: 10, Overlap: -1},
	}
	for _, p := range tests {
		if _, err := SplitOverlap("text", p); !errors.Is(err, ErrInvalidPolicy) {
			t.Errorf("SplitOverlap(%+v) error = %v, want ErrInvalidPolicy", p, err)
		}
	}
}

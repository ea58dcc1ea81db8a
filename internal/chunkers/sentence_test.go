package chunkers

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// reconstruct joins the normalized spans of chunks.
func reconstruct(normalized string, chunks []Chunk) string {
	runes := []rune(normalized)
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(string(runes[c.StartOffset:c.EndOffset]))
	}
	return b.String()
}

func TestSentenceChunker_Name(t *testing.T) {
	if got := NewSentenceChunker().Name(); got != StrategySentence {
		t.Errorf("Name() = %q, want %q", got, StrategySentence)
	}
}

func TestSplit_ExampleScenario(t *testing.T) {
	text := "A cat sat. It slept for hours in the warm sun. Then it woke up suddenly."
	chunks, err := Split(text, Policy{TargetSize: 20, SearchRadius: 10})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	want := []string{
		"A cat sat.",
		"It slept for hours",
		"in the warm sun.",
		"Then it woke up suddenly.",
	}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d: %q", len(chunks), len(want), contents(chunks))
	}
	for i, c := range chunks {
		if c.Content != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, c.Content, want[i])
		}
		if c.Index != i {
			t.Errorf("chunk %d Index = %d", i, c.Index)
		}
	}

	if got := reconstruct(text, chunks); got != text {
		t.Errorf("reconstructed = %q, want %q", got, text)
	}
}

func TestSplit_Coverage(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		policy Policy
	}{
		{"prose", strings.Repeat("The storm broke over the harbour. Ships strained at their moorings.\n", 40), Policy{TargetSize: 120, SearchRadius: 30}},
		{"no terminators", strings.Repeat("abcdefghij", 97), Policy{TargetSize: 50, SearchRadius: 5}},
		{"zero radius", strings.Repeat("One. Two. Three. ", 30), Policy{TargetSize: 17, SearchRadius: 0}},
		{"large radius", strings.Repeat("Short. ", 100), Policy{TargetSize: 10, SearchRadius: 1000}},
		{"leading whitespace", "          \n\n\n   Opening line. Second line follows.", Policy{TargetSize: 8, SearchRadius: 2}},
		{"trailing whitespace", "End of story.                                   ", Policy{TargetSize: 13, SearchRadius: 0}},
		{"multibyte", strings.Repeat("猫が座った。Le chat s'est assis. ", 25), Policy{TargetSize: 30, SearchRadius: 8, Terminators: ".。"}},
		{"single chunk", "Tiny.", Policy{TargetSize: 100, SearchRadius: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.text, tt.policy)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}

			normalized := Normalize(tt.text)
			if got := reconstruct(normalized, chunks); got != normalized {
				t.Errorf("spans do not reconstruct the normalized text\ngot:  %q\nwant: %q", got, normalized)
			}

			for i, c := range chunks {
				if strings.TrimSpace(c.Content) == "" {
					t.Errorf("chunk %d is empty", i)
				}
				if c.Content != strings.TrimSpace(c.Content) {
					t.Errorf("chunk %d is not trimmed: %q", i, c.Content)
				}
				if i > 0 && c.StartOffset != chunks[i-1].EndOffset {
					t.Errorf("chunk %d starts at %d, previous ends at %d", i, c.StartOffset, chunks[i-1].EndOffset)
				}
				if c.EndOffset <= c.StartOffset {
					t.Errorf("chunk %d has empty span [%d,%d)", i, c.StartOffset, c.EndOffset)
				}
			}
		})
	}
}

func TestSplit_BoundaryPreference(t *testing.T) {
	// Terminator sits 3 characters after the naive cut point.
	text := strings.Repeat("x", 22) + "." + strings.Repeat("y", 40)
	chunks, err := Split(text, Policy{TargetSize: 20, SearchRadius: 5})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if chunks[0].EndOffset != 23 {
		t.Errorf("first chunk ends at %d, want 23 (just past the terminator)", chunks[0].EndOffset)
	}
	if !strings.HasSuffix(chunks[0].Content, ".") {
		t.Errorf("first chunk %q should end with the terminator", chunks[0].Content)
	}
}

func TestSplit_NearestTerminatorWins(t *testing.T) {
	// Terminators at 14 (cut 15) and 22 (cut 23); naive end 20 is nearer to 23.
	text := strings.Repeat("a", 14) + "." + strings.Repeat("b", 7) + "." + strings.Repeat("c", 40)
	chunks, err := Split(text, Policy{TargetSize: 20, SearchRadius: 6})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if chunks[0].EndOffset != 23 {
		t.Errorf("first chunk ends at %d, want 23", chunks[0].EndOffset)
	}
}

func TestSplit_TieGoesToEarlierCut(t *testing.T) {
	// Cuts at 18 and 22 are both 2 away from the naive end 20.
	text := strings.Repeat("a", 17) + "." + strings.Repeat("b", 3) + "." + strings.Repeat("c", 40)
	chunks, err := Split(text, Policy{TargetSize: 20, SearchRadius: 5})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if chunks[0].EndOffset != 18 {
		t.Errorf("first chunk ends at %d, want 18", chunks[0].EndOffset)
	}
}

func TestSplit_FallbackCutsAtTargetSize(t *testing.T) {
	text := strings.Repeat("z", 1730)
	chunks, err := Split(text, Policy{TargetSize: 500, SearchRadius: 50})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		if n := len([]rune(c.Content)); n != 500 {
			t.Errorf("chunk %d has %d characters, want 500", i, n)
		}
	}
	if n := len([]rune(chunks[3].Content)); n != 230 {
		t.Errorf("last chunk has %d characters, want 230", n)
	}
}

func TestSplit_TerminatorOutsideWindowIgnored(t *testing.T) {
	// The only terminator lies beyond end+radius, so the cut falls back to end.
	text := strings.Repeat("q", 40) + "." + strings.Repeat("r", 20)
	chunks, err := Split(text, Policy{TargetSize: 20, SearchRadius: 5})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if chunks[0].EndOffset != 20 {
		t.Errorf("first chunk ends at %d, want 20", chunks[0].EndOffset)
	}
}

func TestSplit_Progress(t *testing.T) {
	// A terminator at the very start of each window must not stall the cursor.
	text := strings.Repeat(".", 200)
	chunks, err := Split(text, Policy{TargetSize: 3, SearchRadius: 3})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) > 200 {
		t.Errorf("got %d chunks for 200 characters", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartOffset <= chunks[i-1].StartOffset {
			t.Fatalf("chunk %d does not advance: start %d after %d", i, chunks[i].StartOffset, chunks[i-1].StartOffset)
		}
	}
	if got := reconstruct(text, chunks); got != text {
		t.Error("spans do not reconstruct the text")
	}
}

func TestSplit_EmptyDocument(t *testing.T) {
	for _, text := range []string{"", "   ", "\r\n\r\n"} {
		chunks, err := Split(text, TranslatePolicy())
		if err != nil {
			t.Errorf("Split(%q) error = %v", text, err)
		}
		if chunks == nil || len(chunks) != 0 {
			t.Errorf("Split(%q) = %v, want empty non-nil slice", text, chunks)
		}
	}
}

func TestSplit_InvalidPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
	}{
		{"zero target", Policy{TargetSize: 0}},
		{"negative target", Policy{TargetSize: -5}},
		{"negative radius", Policy{TargetSize: 10, SearchRadius: -1}},
		{"overlap on sentence chunks", Policy{TargetSize: 10, Overlap: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("Some text.", tt.policy)
			if !errors.Is(err, ErrInvalidPolicy) {
				t.Errorf("Split() error = %v, want ErrInvalidPolicy", err)
			}
		})
	}
}

func TestSentenceChunker_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSentenceChunker().Chunk(ctx, strings.Repeat("word ", 100), Policy{TargetSize: 10})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Chunk() error = %v, want context.Canceled", err)
	}
}

func contents(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}

package scenes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/leefowlercu/novel-narrator/internal/cache"
	"github.com/leefowlercu/novel-narrator/internal/chunkers"
	"github.com/leefowlercu/novel-narrator/internal/providers"
)

// fakeExtractor answers each call from a script keyed by call number.
type fakeExtractor struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	answer  func(call int, prompt string) (*providers.SceneResult, error)
}

func (f *fakeExtractor) Name() string                         { return "fake" }
func (f *fakeExtractor) Available() bool                      { return true }
func (f *fakeExtractor) RateLimit() providers.RateLimitConfig { return providers.RateLimitConfig{} }
func (f *fakeExtractor) ModelName() string                    { return "fake-model" }

func (f *fakeExtractor) ExtractScenes(ctx context.Context, req providers.SceneRequest) (*providers.SceneResult, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()
	return f.answer(call, req.Prompt)
}

func sceneJSON(summaries ...string) string {
	parts := make([]string, len(summaries))
	for i, s := range summaries {
		parts[i] = fmt.Sprintf(`{"scene_id":1,"summary":%q,"original_text":%q}`, s, s)
	}
	return `{"scenes":[` + strings.Join(parts, ",") + `]}`
}

// smallPolicy splits testDocument into three chunks.
func smallPolicy() chunkers.Policy {
	return chunkers.Policy{TargetSize: 40, Overlap: 10}
}

// testDocument is 100 runes: chunks at 0, 30 and 60. The 25-rune period keeps
// every overlap window distinct, so each chunk renders a different prompt.
var testDocument = strings.Repeat("abcdefghijklmnopqrstuvwxy", 4)

func TestSegmenter_Segment(t *testing.T) {
	ext := &fakeExtractor{answer: func(call int, _ string) (*providers.SceneResult, error) {
		return &providers.SceneResult{Content: sceneJSON(fmt.Sprintf("c%d-a", call), fmt.Sprintf("c%d-b", call))}, nil
	}}

	seg, err := NewSegmenter(ext, WithChunking(chunkers.StrategyOverlap, smallPolicy()))
	if err != nil {
		t.Fatalf("NewSegmenter() error = %v", err)
	}

	result, err := seg.Segment(context.Background(), testDocument)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}

	if result.TotalChunks != 3 {
		t.Errorf("TotalChunks = %d, want 3", result.TotalChunks)
	}
	if ext.calls != 3 {
		t.Errorf("extractor calls = %d, want 3", ext.calls)
	}
	if len(result.Scenes) != 6 {
		t.Fatalf("len(Scenes) = %d, want 6", len(result.Scenes))
	}

	want := []string{"c0-a", "c0-b", "c1-a", "c1-b", "c2-a", "c2-b"}
	for i, s := range result.Scenes {
		if s.Summary != want[i] {
			t.Errorf("scene %d summary = %q, want %q", i, s.Summary, want[i])
		}
		if s.SceneID != i+1 {
			t.Errorf("scene %d id = %d, want %d", i, s.SceneID, i+1)
		}
	}

	// Chunk text reaches the prompt
	if !strings.Contains(ext.prompts[1], testDocument[30:70]) {
		t.Error("second prompt should contain the second chunk")
	}
}

func TestSegmenter_SkipsFailedChunks(t *testing.T) {
	ext := &fakeExtractor{answer: func(call int, _ string) (*providers.SceneResult, error) {
		switch call {
		case 0:
			return nil, providers.NewCallError("fake", "scenes", providers.ReasonRateLimited, errors.New("slow down"))
		case 1:
			return &providers.SceneResult{Content: "not json"}, nil
		default:
			return &providers.SceneResult{Content: sceneJSON("kept")}, nil
		}
	}}

	seg, _ := NewSegmenter(ext, WithChunking(chunkers.StrategyOverlap, smallPolicy()))

	result, err := seg.Segment(context.Background(), testDocument)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}

	if len(result.SkippedChunks) != 2 || result.SkippedChunks[0] != 0 || result.SkippedChunks[1] != 1 {
		t.Errorf("SkippedChunks = %v, want [0 1]", result.SkippedChunks)
	}
	if len(result.Scenes) != 1 || result.Scenes[0].Summary != "kept" || result.Scenes[0].SceneID != 1 {
		t.Errorf("Scenes = %+v, want one renumbered scene", result.Scenes)
	}
}

func TestSegmenter_Strict(t *testing.T) {
	ext := &fakeExtractor{answer: func(call int, _ string) (*providers.SceneResult, error) {
		if call == 1 {
			return &providers.SceneResult{Content: "[broken", Truncated: true, ProviderName: "fake"}, nil
		}
		return &providers.SceneResult{Content: sceneJSON("ok")}, nil
	}}

	seg, _ := NewSegmenter(ext, WithChunking(chunkers.StrategyOverlap, smallPolicy()), WithStrict(true))

	_, err := seg.Segment(context.Background(), testDocument)
	if err == nil {
		t.Fatal("Segment() expected error in strict mode")
	}
	if got := providers.ReasonOf(err); got != providers.ReasonTruncated {
		t.Errorf("ReasonOf() = %q, want %q", got, providers.ReasonTruncated)
	}
	if !errors.Is(err, ErrMalformedScenes) {
		t.Errorf("error should wrap ErrMalformedScenes: %v", err)
	}
	if ext.calls != 2 {
		t.Errorf("extractor calls = %d, want 2", ext.calls)
	}
}

func TestSegmenter_TruncatedAnswerRejected(t *testing.T) {
	truncatedOnFirst := func(call int, _ string) (*providers.SceneResult, error) {
		// Valid JSON, but the model stopped early.
		return &providers.SceneResult{Content: sceneJSON("partial"), Truncated: call == 0, ProviderName: "fake"}, nil
	}

	t.Run("strict stops", func(t *testing.T) {
		ext := &fakeExtractor{answer: truncatedOnFirst}
		seg, _ := NewSegmenter(ext, WithChunking(chunkers.StrategyOverlap, smallPolicy()), WithStrict(true))

		_, err := seg.Segment(context.Background(), testDocument)
		if got := providers.ReasonOf(err); got != providers.ReasonTruncated {
			t.Errorf("ReasonOf() = %q, want %q", got, providers.ReasonTruncated)
		}
		if ext.calls != 1 {
			t.Errorf("extractor calls = %d, want 1", ext.calls)
		}
	})

	t.Run("lenient skips and does not cache", func(t *testing.T) {
		sceneCache, err := cache.NewSceneCache(cache.CacheConfig{BaseDir: t.TempDir()}, "fake", "fake-model")
		if err != nil {
			t.Fatalf("NewSceneCache() error = %v", err)
		}
		ext := &fakeExtractor{answer: truncatedOnFirst}
		seg, _ := NewSegmenter(ext, WithChunking(chunkers.StrategyOverlap, smallPolicy()), WithCache(sceneCache))

		result, err := seg.Segment(context.Background(), testDocument)
		if err != nil {
			t.Fatalf("Segment() error = %v", err)
		}
		if len(result.SkippedChunks) != 1 || result.SkippedChunks[0] != 0 {
			t.Errorf("SkippedChunks = %v, want [0]", result.SkippedChunks)
		}
		if len(result.Scenes) != 2 {
			t.Errorf("len(Scenes) = %d, want 2", len(result.Scenes))
		}

		// The truncated chunk is asked again; the others come from the cache.
		second, err := seg.Segment(context.Background(), testDocument)
		if err != nil {
			t.Fatalf("second Segment() error = %v", err)
		}
		if second.CachedChunks != 2 {
			t.Errorf("second run CachedChunks = %d, want 2", second.CachedChunks)
		}
		if ext.calls != 4 {
			t.Errorf("extractor calls = %d, want 4", ext.calls)
		}
		if len(second.Scenes) != 3 {
			t.Errorf("second run len(Scenes) = %d, want 3", len(second.Scenes))
		}
	})
}

func TestSegmenter_EmptyDocument(t *testing.T) {
	ext := &fakeExtractor{answer: func(int, string) (*providers.SceneResult, error) {
		t.Error("extractor should not be called")
		return nil, nil
	}}
	seg, _ := NewSegmenter(ext)

	for _, doc := range []string{"", "\r\n\r\n"} {
		if _, err := seg.Segment(context.Background(), doc); !errors.Is(err, chunkers.ErrEmptyDocument) {
			t.Errorf("Segment(%q) error = %v, want ErrEmptyDocument", doc, err)
		}
	}
}

func TestSegmenter_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ext := &fakeExtractor{answer: func(call int, _ string) (*providers.SceneResult, error) {
		cancel()
		return nil, providers.NewCallError("fake", "scenes", providers.ReasonAPIError, context.Canceled)
	}}
	seg, _ := NewSegmenter(ext, WithChunking(chunkers.StrategyOverlap, smallPolicy()))

	if _, err := seg.Segment(ctx, testDocument); !errors.Is(err, context.Canceled) {
		t.Errorf("Segment() error = %v, want context.Canceled", err)
	}
	if ext.calls != 1 {
		t.Errorf("extractor calls = %d, want 1", ext.calls)
	}
}

func TestSegmenter_Cache(t *testing.T) {
	sceneCache, err := cache.NewSceneCache(cache.CacheConfig{BaseDir: t.TempDir()}, "fake", "fake-model")
	if err != nil {
		t.Fatalf("NewSceneCache() error = %v", err)
	}

	ext := &fakeExtractor{answer: func(call int, _ string) (*providers.SceneResult, error) {
		return &providers.SceneResult{Content: sceneJSON(fmt.Sprintf("s%d", call))}, nil
	}}
	seg, _ := NewSegmenter(ext, WithChunking(chunkers.StrategyOverlap, smallPolicy()), WithCache(sceneCache))

	first, err := seg.Segment(context.Background(), testDocument)
	if err != nil {
		t.Fatalf("first Segment() error = %v", err)
	}
	if first.CachedChunks != 0 {
		t.Errorf("first run CachedChunks = %d, want 0", first.CachedChunks)
	}
	if ext.calls != 3 {
		t.Fatalf("first run extractor calls = %d, want 3", ext.calls)
	}
	if ext.prompts[0] == ext.prompts[1] || ext.prompts[1] == ext.prompts[2] || ext.prompts[0] == ext.prompts[2] {
		t.Fatal("chunk prompts should differ")
	}

	second, err := seg.Segment(context.Background(), testDocument)
	if err != nil {
		t.Fatalf("second Segment() error = %v", err)
	}
	if second.CachedChunks != 3 {
		t.Errorf("second run CachedChunks = %d, want 3", second.CachedChunks)
	}
	if ext.calls != 3 {
		t.Errorf("extractor calls = %d, want 3 across both runs", ext.calls)
	}
	if second.Scenes[2].Summary != "s2" {
		t.Errorf("cached scene summary = %q, want s2", second.Scenes[2].Summary)
	}
}

func TestNewSegmenter_Validation(t *testing.T) {
	if _, err := NewSegmenter(nil); err == nil {
		t.Error("NewSegmenter(nil) expected error")
	}

	ext := &fakeExtractor{}
	_, err := NewSegmenter(ext, WithChunking(chunkers.StrategyOverlap, chunkers.Policy{TargetSize: 10, Overlap: 10}))
	if !errors.Is(err, chunkers.ErrInvalidPolicy) {
		t.Errorf("NewSegmenter() error = %v, want ErrInvalidPolicy", err)
	}

	if _, err := NewSegmenter(ext, WithPromptBuilder(nil)); err != nil {
		t.Errorf("NewSegmenter() with nil builder error = %v", err)
	}
}

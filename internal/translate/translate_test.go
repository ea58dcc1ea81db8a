package translate

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/leefowlercu/novel-narrator/internal/cache"
	"github.com/leefowlercu/novel-narrator/internal/chunkers"
	"github.com/leefowlercu/novel-narrator/internal/providers"
)

// fakeTranslator upper-cases text and fails on chosen calls.
type fakeTranslator struct {
	mu        sync.Mutex
	calls     int
	inputs    []string
	fail      map[int]error
	truncated map[int]bool
}

func (f *fakeTranslator) Name() string                         { return "fake" }
func (f *fakeTranslator) Available() bool                      { return true }
func (f *fakeTranslator) RateLimit() providers.RateLimitConfig { return providers.RateLimitConfig{} }
func (f *fakeTranslator) ModelName() string                    { return "fake-model" }

func (f *fakeTranslator) Translate(ctx context.Context, req providers.TranslateRequest) (*providers.TranslateResult, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	f.inputs = append(f.inputs, req.Text)
	f.mu.Unlock()

	if err := f.fail[call]; err != nil {
		return nil, err
	}
	return &providers.TranslateResult{
		Text:         strings.ToUpper(req.Text),
		Truncated:    f.truncated[call],
		ProviderName: "fake",
		ModelName:    "fake-model",
	}, nil
}

// The example document from the chunking rules: four sentence chunks.
const exampleText = "A cat sat. It slept for hours in the warm sun. Then it woke up suddenly."

func examplePolicy() chunkers.Policy {
	return chunkers.Policy{TargetSize: 20, SearchRadius: 10, Terminators: "."}
}

func TestPipeline_Translate(t *testing.T) {
	tr := &fakeTranslator{}
	p, err := New(tr, "Shouting", WithPolicy(examplePolicy()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var out bytes.Buffer
	report, err := p.Translate(context.Background(), exampleText, &out)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	want := "A CAT SAT.\nIT SLEPT FOR HOURS\nIN THE WARM SUN.\nTHEN IT WOKE UP SUDDENLY.\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if report.TotalChunks != 4 || report.Translated != 4 || report.Fallbacks != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestPipeline_FallbackVerbatim(t *testing.T) {
	tr := &fakeTranslator{fail: map[int]error{
		1: providers.NewCallError("fake", "translate", providers.ReasonTimeout, errors.New("slow")),
	}}
	p, _ := New(tr, "Shouting", WithPolicy(examplePolicy()))

	var out bytes.Buffer
	report, err := p.Translate(context.Background(), exampleText, &out)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	want := "A CAT SAT.\nIt slept for hours\nIN THE WARM SUN.\nTHEN IT WOKE UP SUDDENLY.\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if report.Fallbacks != 1 || len(report.FallbackChunks) != 1 || report.FallbackChunks[0] != 1 {
		t.Errorf("report = %+v, want one fallback at chunk 1", report)
	}
	if report.Translated != 3 {
		t.Errorf("Translated = %d, want 3", report.Translated)
	}
}

func TestPipeline_FallbackFail(t *testing.T) {
	tr := &fakeTranslator{fail: map[int]error{
		2: providers.NewCallError("fake", "translate", providers.ReasonRateLimited, errors.New("429")),
	}}
	p, _ := New(tr, "Shouting", WithPolicy(examplePolicy()), WithFallback(FallbackFail))

	var out bytes.Buffer
	report, err := p.Translate(context.Background(), exampleText, &out)
	if err == nil {
		t.Fatal("Translate() expected error with fail policy")
	}
	if got := providers.ReasonOf(err); got != providers.ReasonRateLimited {
		t.Errorf("ReasonOf() = %q, want %q", got, providers.ReasonRateLimited)
	}

	// Chunks before the failure are already written
	if out.String() != "A CAT SAT.\nIT SLEPT FOR HOURS\n" {
		t.Errorf("output = %q", out.String())
	}
	if report == nil || report.Translated != 2 {
		t.Errorf("report = %+v, want 2 translated", report)
	}

	// The failing chunk is named by the index a resumed run starts from.
	var chunkErr *ChunkError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("Translate() error = %v, want *ChunkError", err)
	}
	if chunkErr.Index != 2 || chunkErr.Total != 4 {
		t.Errorf("ChunkError = %+v, want index 2 of 4", chunkErr)
	}
	if !strings.Contains(err.Error(), "chunk index 2 of 4") {
		t.Errorf("error = %q, want 0-based chunk index", err.Error())
	}
	if report.NextIndex != 2 {
		t.Errorf("NextIndex = %d, want 2", report.NextIndex)
	}

	// Resuming from NextIndex completes the document.
	resumed, _ := New(&fakeTranslator{}, "Shouting", WithPolicy(examplePolicy()), WithStartIndex(report.NextIndex))
	final, err := resumed.Translate(context.Background(), exampleText, &out)
	if err != nil {
		t.Fatalf("resumed Translate() error = %v", err)
	}
	if out.String() != "A CAT SAT.\nIT SLEPT FOR HOURS\nIN THE WARM SUN.\nTHEN IT WOKE UP SUDDENLY.\n" {
		t.Errorf("resumed output = %q", out.String())
	}
	if final.NextIndex != final.TotalChunks {
		t.Errorf("NextIndex = %d, want %d", final.NextIndex, final.TotalChunks)
	}
}

func TestPipeline_ContextCanceledStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr := &fakeTranslator{fail: map[int]error{0: context.Canceled}}
	cancelling := &cancelOnCall{fakeTranslator: tr, cancel: cancel}

	p, _ := New(cancelling, "Shouting", WithPolicy(examplePolicy()))

	var out bytes.Buffer
	_, err := p.Translate(ctx, exampleText, &out)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Translate() error = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be written after cancellation, got %q", out.String())
	}
}

type cancelOnCall struct {
	*fakeTranslator
	cancel context.CancelFunc
}

func (c *cancelOnCall) Translate(ctx context.Context, req providers.TranslateRequest) (*providers.TranslateResult, error) {
	c.cancel()
	return c.fakeTranslator.Translate(ctx, req)
}

func TestPipeline_StartIndex(t *testing.T) {
	tr := &fakeTranslator{}
	p, _ := New(tr, "Shouting", WithPolicy(examplePolicy()), WithStartIndex(2))

	var out bytes.Buffer
	report, err := p.Translate(context.Background(), exampleText, &out)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	if out.String() != "IN THE WARM SUN.\nTHEN IT WOKE UP SUDDENLY.\n" {
		t.Errorf("output = %q", out.String())
	}
	if tr.calls != 2 || report.StartIndex != 2 {
		t.Errorf("calls = %d, report = %+v", tr.calls, report)
	}

	beyond, _ := New(tr, "Shouting", WithPolicy(examplePolicy()), WithStartIndex(9))
	if _, err := beyond.Translate(context.Background(), exampleText, &out); err == nil {
		t.Error("Translate() expected error for start index beyond last chunk")
	}
}

func TestPipeline_Cache(t *testing.T) {
	tc, err := cache.NewTranslationCache(cache.CacheConfig{BaseDir: t.TempDir()}, "fake", "fake-model", "Shouting")
	if err != nil {
		t.Fatalf("NewTranslationCache() error = %v", err)
	}

	tr := &fakeTranslator{truncated: map[int]bool{3: true}}
	p, _ := New(tr, "Shouting", WithPolicy(examplePolicy()), WithCache(tc))

	var first bytes.Buffer
	report, err := p.Translate(context.Background(), exampleText, &first)
	if err != nil {
		t.Fatalf("first Translate() error = %v", err)
	}
	if report.Truncated != 1 {
		t.Errorf("Truncated = %d, want 1", report.Truncated)
	}

	var second bytes.Buffer
	report, err = p.Translate(context.Background(), exampleText, &second)
	if err != nil {
		t.Fatalf("second Translate() error = %v", err)
	}

	// Truncated results are not cached, so only the last chunk is re-translated
	if report.Cached != 3 || report.Translated != 1 {
		t.Errorf("second report = %+v, want 3 cached and 1 translated", report)
	}
	if tr.calls != 5 {
		t.Errorf("calls = %d, want 5", tr.calls)
	}
	if first.String() != second.String() {
		t.Errorf("cached output %q differs from %q", second.String(), first.String())
	}
}

func TestPipeline_Progress(t *testing.T) {
	var seen []Progress
	p, _ := New(&fakeTranslator{}, "Shouting",
		WithPolicy(examplePolicy()),
		WithProgress(func(pr Progress) { seen = append(seen, pr) }))

	if _, err := p.Translate(context.Background(), exampleText, &bytes.Buffer{}); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if len(seen) != 4 || seen[3].Index != 3 || seen[3].Total != 4 {
		t.Errorf("progress = %+v", seen)
	}
}

func TestPipeline_EmptyDocument(t *testing.T) {
	p, _ := New(&fakeTranslator{}, "Shouting")

	for _, doc := range []string{"", "\n\n\r\n", "   "} {
		if _, err := p.Translate(context.Background(), doc, &bytes.Buffer{}); !errors.Is(err, chunkers.ErrEmptyDocument) {
			t.Errorf("Translate(%q) error = %v, want ErrEmptyDocument", doc, err)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPipeline_WriteError(t *testing.T) {
	p, _ := New(&fakeTranslator{}, "Shouting", WithPolicy(examplePolicy()))
	if _, err := p.Translate(context.Background(), exampleText, failingWriter{}); err == nil {
		t.Error("Translate() expected write error")
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name       string
		translator providers.Translator
		language   string
		opts       []Option
	}{
		{"nil translator", nil, "French", nil},
		{"empty language", &fakeTranslator{}, "  ", nil},
		{"overlap policy", &fakeTranslator{}, "French", []Option{WithPolicy(chunkers.Policy{TargetSize: 10, Overlap: 2})}},
		{"unknown fallback", &fakeTranslator{}, "French", []Option{WithFallback("retry")}},
		{"negative start", &fakeTranslator{}, "French", []Option{WithStartIndex(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.translator, tt.language, tt.opts...); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}

func TestParseFallback(t *testing.T) {
	for _, name := range []string{"verbatim", "fail"} {
		if got, err := ParseFallback(name); err != nil || string(got) != name {
			t.Errorf("ParseFallback(%q) = %q, %v", name, got, err)
		}
	}
	if _, err := ParseFallback(""); err == nil {
		t.Error("ParseFallback(\"\") expected error")
	}
}

package subcommands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/leefowlercu/novel-narrator/internal/providers"
)

type stubProvider struct {
	name      string
	available bool
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return s.available }
func (s *stubProvider) RateLimit() providers.RateLimitConfig {
	return providers.RateLimitConfig{RequestsPerMinute: 60}
}
func (s *stubProvider) ModelName() string { return "stub-model" }

type stubTranslator struct{ stubProvider }

func (s *stubTranslator) Translate(ctx context.Context, req providers.TranslateRequest) (*providers.TranslateResult, error) {
	return &providers.TranslateResult{Text: req.Text}, nil
}

type stubSpeech struct{ stubProvider }

func (s *stubSpeech) Synthesize(ctx context.Context, req providers.SpeechRequest) (*providers.SpeechResult, error) {
	return &providers.SpeechResult{Audio: []byte("ID3"), Format: "mp3"}, nil
}

type stubImages struct{ stubProvider }

func (s *stubImages) GenerateImage(ctx context.Context, req providers.ImageRequest) (*providers.ImageResult, error) {
	return &providers.ImageResult{Data: []byte("png")}, nil
}

func newStubRegistry(t *testing.T) *providers.Registry {
	t.Helper()
	registry := providers.NewRegistry()
	for _, p := range []providers.Provider{
		&stubTranslator{stubProvider{name: "alpha", available: true}},
		&stubSpeech{stubProvider{name: "voice"}},
		&stubImages{stubProvider{name: "painter", available: true}},
	} {
		if err := registry.Register(p); err != nil {
			t.Fatalf("Register(%s) error = %v", p.Name(), err)
		}
	}
	return registry
}

func TestPrintRegistry(t *testing.T) {
	registry := newStubRegistry(t)

	var buf bytes.Buffer
	printRegistry(&buf, registry, false)
	out := buf.String()

	for _, want := range []string{
		"Translation Providers:",
		"alpha (available)",
		"Scene Extraction Providers:\n  (none registered)",
		"painter (available)",
		"voice (unavailable)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintRegistry_Verbose(t *testing.T) {
	registry := newStubRegistry(t)

	var buf bytes.Buffer
	printRegistry(&buf, registry, true)
	out := buf.String()

	for _, want := range []string{"Model: stub-model", "Rate Limit: 60 req/min", "Status: unavailable"} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose output missing %q:\n%s", want, out)
		}
	}
}

func TestPickCapability(t *testing.T) {
	registry := newStubRegistry(t)

	tests := []struct {
		name      string
		provider  string
		requested providers.Capability
		want      providers.Capability
		wantErr   bool
	}{
		{"translator", "alpha", "", providers.CapabilityTranslate, false},
		{"speech only", "voice", "", providers.CapabilitySpeech, false},
		{"image needs flag", "painter", "", "", true},
		{"explicit", "painter", providers.CapabilityImage, providers.CapabilityImage, false},
		{"unknown", "missing", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickCapability(registry, tt.provider, tt.requested)
			if (err != nil) != tt.wantErr {
				t.Fatalf("pickCapability() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("pickCapability() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProbe(t *testing.T) {
	registry := newStubRegistry(t)
	ctx := context.Background()

	detail, err := probe(ctx, registry, providers.CapabilityTranslate, "alpha")
	if err != nil || !strings.Contains(detail, "lighthouse") {
		t.Errorf("translate probe = %q, %v", detail, err)
	}

	detail, err = probe(ctx, registry, providers.CapabilityImage, "painter")
	if err != nil || detail != "Image: 3 bytes" {
		t.Errorf("image probe = %q, %v", detail, err)
	}

	if _, err := probe(ctx, registry, providers.CapabilityScenes, "alpha"); err == nil {
		t.Error("expected error probing a capability the provider lacks")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("truncate() = %q, want abcde...", got)
	}
}

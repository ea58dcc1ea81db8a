package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/leefowlercu/novel-narrator/internal/providers"
)

// Compile-time capability checks
var (
	_ providers.Translator     = (*Provider)(nil)
	_ providers.SceneExtractor = (*Provider)(nil)
)

func TestNew_Options(t *testing.T) {
	p := New(
		WithAPIKey("k"),
		WithModel("gemini-pro"),
		WithRateLimit(providers.RateLimitConfig{RequestsPerMinute: 5}),
	)

	if p.Name() != "google" {
		t.Errorf("Name() = %q, want google", p.Name())
	}
	if !p.Available() {
		t.Error("Available() = false with API key")
	}
	if p.ModelName() != "gemini-pro" {
		t.Errorf("ModelName() = %q, want gemini-pro", p.ModelName())
	}
	if p.RateLimit().RequestsPerMinute != 5 {
		t.Errorf("RateLimit().RequestsPerMinute = %d, want 5", p.RateLimit().RequestsPerMinute)
	}

	// Empty model keeps the default
	if got := New(WithModel("")).ModelName(); got != defaultModel {
		t.Errorf("ModelName() = %q, want %q", got, defaultModel)
	}
}

func TestProvider_Unavailable(t *testing.T) {
	p := New(WithAPIKey(""))

	_, err := p.Translate(context.Background(), providers.TranslateRequest{Text: "x"})
	if got := providers.ReasonOf(err); got != providers.ReasonUnavailable {
		t.Errorf("Translate ReasonOf() = %q, want %q", got, providers.ReasonUnavailable)
	}

	_, err = p.ExtractScenes(context.Background(), providers.SceneRequest{Prompt: "x"})
	if got := providers.ReasonOf(err); got != providers.ReasonUnavailable {
		t.Errorf("ExtractScenes ReasonOf() = %q, want %q", got, providers.ReasonUnavailable)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close() without client error = %v", err)
	}
}

func TestReadResponse(t *testing.T) {
	tests := []struct {
		name          string
		resp          *genai.GenerateContentResponse
		wantContent   string
		wantTruncated bool
		wantTokens    int
		wantReason    providers.FailureReason
	}{
		{
			name: "joins text parts",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content:      &genai.Content{Parts: []genai.Part{genai.Text(" Hallo "), genai.Text("Welt. ")}},
					FinishReason: genai.FinishReasonStop,
				}},
				UsageMetadata: &genai.UsageMetadata{TotalTokenCount: 42},
			},
			wantContent: "Hallo Welt.",
			wantTokens:  42,
		},
		{
			name: "max tokens marks truncation",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content:      &genai.Content{Parts: []genai.Part{genai.Text("Part")}},
					FinishReason: genai.FinishReasonMaxTokens,
				}},
			},
			wantContent:   "Part",
			wantTruncated: true,
		},
		{
			name:       "nil response",
			resp:       nil,
			wantReason: providers.ReasonMalformedResponse,
		},
		{
			name:       "no candidates",
			resp:       &genai.GenerateContentResponse{},
			wantReason: providers.ReasonMalformedResponse,
		},
		{
			name: "empty text",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
			},
			wantReason: providers.ReasonMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := readResponse("translate", tt.resp)
			if tt.wantReason != "" {
				if got := providers.ReasonOf(err); got != tt.wantReason {
					t.Errorf("ReasonOf() = %q, want %q", got, tt.wantReason)
				}
				return
			}
			if err != nil {
				t.Fatalf("readResponse() error = %v", err)
			}
			if out.content != tt.wantContent {
				t.Errorf("content = %q, want %q", out.content, tt.wantContent)
			}
			if out.truncated != tt.wantTruncated {
				t.Errorf("truncated = %v, want %v", out.truncated, tt.wantTruncated)
			}
			if out.tokens != tt.wantTokens {
				t.Errorf("tokens = %d, want %d", out.tokens, tt.wantTokens)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want providers.FailureReason
	}{
		{"quota exceeded", fmt.Errorf("rpc; %w", &googleapi.Error{Code: http.StatusTooManyRequests}), providers.ReasonRateLimited},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, providers.ReasonAPIError},
		{"deadline", context.DeadlineExceeded, providers.ReasonTimeout},
		{"other", errors.New("connection reset"), providers.ReasonAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify("scenes", tt.err).Reason; got != tt.want {
				t.Errorf("classify() reason = %q, want %q", got, tt.want)
			}
		})
	}
}

// Package google implements translation and scene extraction on Gemini models.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/leefowlercu/novel-narrator/internal/metrics"
	"github.com/leefowlercu/novel-narrator/internal/providers"
	"github.com/leefowlercu/novel-narrator/internal/version"
)

const (
	providerName = "google"
	defaultModel = "gemini-1.5-flash"

	translateInstruction = "You are a helpful assistant that translates text."
	scenesInstruction    = "You are a screenplay expert. Return a structured JSON array."
)

// Provider implements providers.Translator and providers.SceneExtractor.
type Provider struct {
	apiKey    string
	model     string
	endpoint  string
	rateLimit providers.RateLimitConfig
	logger    *slog.Logger

	rateLimiter *providers.RateLimiter

	mu     sync.Mutex
	client *genai.Client
}

// Option configures the Provider.
type Option func(*Provider)

// WithAPIKey sets the API key. Defaults to $GOOGLE_API_KEY.
func WithAPIKey(key string) Option {
	return func(p *Provider) {
		p.apiKey = key
	}
}

// WithModel sets the model to use.
func WithModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(p *Provider) {
		p.endpoint = endpoint
	}
}

// WithRateLimit sets a custom rate limit configuration.
func WithRateLimit(cfg providers.RateLimitConfig) Option {
	return func(p *Provider) {
		p.rateLimit = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// New creates a new Gemini provider. The API client is created on first use.
func New(opts ...Option) *Provider {
	p := &Provider{
		apiKey: os.Getenv("GOOGLE_API_KEY"),
		model:  defaultModel,
		rateLimit: providers.RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         10,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.rateLimiter = providers.NewRateLimiter(p.rateLimit)
	p.logger = p.logger.With("provider", providerName)

	return p
}

// Name returns the provider's unique identifier.
func (p *Provider) Name() string {
	return providerName
}

// Available returns true if an API key is configured.
func (p *Provider) Available() bool {
	return p.apiKey != ""
}

// RateLimit returns the rate limit configuration.
func (p *Provider) RateLimit() providers.RateLimitConfig {
	return p.rateLimit
}

// ModelName returns the model identifier.
func (p *Provider) ModelName() string {
	return p.model
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}

// Translate translates one chunk into the requested language.
func (p *Provider) Translate(ctx context.Context, req providers.TranslateRequest) (*providers.TranslateResult, error) {
	prompt := fmt.Sprintf(
		"Translate the following text to %s. Only return the translated text, do not include any additional explanations or notes. Text to translate: %s",
		req.TargetLanguage, req.Text,
	)

	reply, err := p.generate(ctx, "translate", translateInstruction, prompt, false)
	if err != nil {
		return nil, err
	}
	if reply.truncated {
		p.logger.Warn("translation truncated by token limit", "chunk", req.ChunkIndex, "model", p.model)
	}

	return &providers.TranslateResult{
		Text:         reply.content,
		Truncated:    reply.truncated,
		TokensUsed:   reply.tokens,
		ProviderName: providerName,
		ModelName:    p.model,
		TranslatedAt: time.Now(),
	}, nil
}

// ExtractScenes sends a segmentation prompt and returns the raw JSON answer.
func (p *Provider) ExtractScenes(ctx context.Context, req providers.SceneRequest) (*providers.SceneResult, error) {
	reply, err := p.generate(ctx, "scenes", scenesInstruction, req.Prompt, true)
	if err != nil {
		return nil, err
	}
	if reply.truncated {
		p.logger.Warn("scene response truncated by token limit", "chunk", req.ChunkIndex, "model", p.model)
	}

	return &providers.SceneResult{
		Content:      reply.content,
		Truncated:    reply.truncated,
		TokensUsed:   reply.tokens,
		ProviderName: providerName,
		ModelName:    p.model,
	}, nil
}

func (p *Provider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	opts := []option.ClientOption{
		option.WithAPIKey(p.apiKey),
		option.WithUserAgent(version.UserAgent()),
	}
	if p.endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client; %w", err)
	}
	p.client = client
	return client, nil
}

type reply struct {
	content   string
	truncated bool
	tokens    int
}

func (p *Provider) generate(ctx context.Context, op, instruction, prompt string, jsonMode bool) (out reply, err error) {
	if !p.Available() {
		return out, providers.NewCallError(providerName, op, providers.ReasonUnavailable, errors.New("GOOGLE_API_KEY not set"))
	}
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return out, providers.NewCallError(providerName, op, providers.ReasonCanceled, fmt.Errorf("rate limit wait failed; %w", err))
	}

	client, err := p.getClient(ctx)
	if err != nil {
		return out, providers.NewCallError(providerName, op, providers.ReasonUnavailable, err)
	}

	start := time.Now()
	defer func() {
		metrics.RecordProviderRequest(providerName, op, time.Since(start), out.tokens, string(providers.ReasonOf(err)))
	}()

	model := client.GenerativeModel(p.model)
	model.SetTemperature(0.5)
	model.SetTopP(0.9)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(instruction)}}
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return out, classify(op, err)
	}

	out, err = readResponse(op, resp)
	return out, err
}

// readResponse extracts the text of the first candidate.
func readResponse(op string, resp *genai.GenerateContentResponse) (reply, error) {
	var out reply
	if resp == nil || len(resp.Candidates) == 0 {
		return out, providers.NewCallError(providerName, op, providers.ReasonMalformedResponse, errors.New("no candidates returned"))
	}

	cand := resp.Candidates[0]
	var sb strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	out.content = strings.TrimSpace(sb.String())
	out.truncated = cand.FinishReason == genai.FinishReasonMaxTokens
	if resp.UsageMetadata != nil {
		out.tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	if out.content == "" {
		return out, providers.NewCallError(providerName, op, providers.ReasonMalformedResponse, errors.New("empty response content"))
	}
	return out, nil
}

// classify converts a client error into a CallError.
func classify(op string, err error) *providers.CallError {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return providers.StatusError(providerName, op, apiErr.Code, err)
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return providers.NewCallError(providerName, op, providers.ReasonMalformedResponse, err)
	}

	return providers.NewCallError(providerName, op, providers.ReasonAPIError, err)
}

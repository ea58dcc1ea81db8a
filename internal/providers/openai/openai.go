// Package openai implements translation, scene extraction, image generation and
// speech synthesis on the OpenAI API.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/leefowlercu/novel-narrator/internal/metrics"
	"github.com/leefowlercu/novel-narrator/internal/providers"
)

const (
	providerName = "openai"

	defaultChatModel   = "gpt-4-turbo"
	defaultImageModel  = goopenai.CreateImageModelDallE3
	defaultImageSize   = goopenai.CreateImageSize1024x1024
	defaultSpeechModel = goopenai.TTSModel1
	defaultVoice       = goopenai.VoiceOnyx

	translateSystemPrompt = "You are a helpful assistant that translates text."
	scenesSystemPrompt    = "You are a screenplay expert. Return a structured JSON array."
)

// Sampling parameters shared by chat operations.
const (
	temperature      = 0.5
	topP             = 0.9
	presencePenalty  = 0.2
	frequencyPenalty = 0.2
)

// Provider implements providers.Translator, providers.SceneExtractor,
// providers.ImageGenerator and providers.SpeechSynthesizer.
type Provider struct {
	apiKey      string
	baseURL     string
	chatModel   string
	imageModel  string
	speechModel goopenai.SpeechModel
	voice       goopenai.SpeechVoice
	httpClient  *http.Client
	rateLimit   providers.RateLimitConfig
	logger      *slog.Logger

	client      *goopenai.Client
	rateLimiter *providers.RateLimiter
}

// Option configures the Provider.
type Option func(*Provider)

// WithAPIKey sets the API key. Defaults to $OPENAI_API_KEY.
func WithAPIKey(key string) Option {
	return func(p *Provider) {
		p.apiKey = key
	}
}

// WithBaseURL points the client at a compatible endpoint.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		p.baseURL = url
	}
}

// WithModel sets the chat model used for translation and scene extraction.
func WithModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.chatModel = model
		}
	}
}

// WithImageModel sets the image model.
func WithImageModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.imageModel = model
		}
	}
}

// WithSpeechModel sets the text-to-speech model.
func WithSpeechModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.speechModel = goopenai.SpeechModel(model)
		}
	}
}

// WithVoice sets the default voice.
func WithVoice(voice string) Option {
	return func(p *Provider) {
		if voice != "" {
			p.voice = goopenai.SpeechVoice(voice)
		}
	}
}

// WithHTTPClient sets the HTTP client to use.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = client
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

// New creates a new OpenAI provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		apiKey:      os.Getenv("OPENAI_API_KEY"),
		chatModel:   defaultChatModel,
		imageModel:  defaultImageModel,
		speechModel: defaultSpeechModel,
		voice:       defaultVoice,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		rateLimit: providers.RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         10,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	cfg := goopenai.DefaultConfig(p.apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	cfg.HTTPClient = p.httpClient

	p.client = goopenai.NewClientWithConfig(cfg)
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

// ModelName returns the chat model.
func (p *Provider) ModelName() string {
	return p.chatModel
}

// Translate translates one chunk into the requested language.
func (p *Provider) Translate(ctx context.Context, req providers.TranslateRequest) (*providers.TranslateResult, error) {
	prompt := fmt.Sprintf(
		"Translate the following text to %s. Only return the translated text, do not include any additional explanations or notes. Text to translate: %s",
		req.TargetLanguage, req.Text,
	)

	reply, err := p.chat(ctx, "translate", translateSystemPrompt, prompt, false)
	if err != nil {
		return nil, err
	}
	if reply.truncated {
		p.logger.Warn("translation truncated by token limit", "chunk", req.ChunkIndex, "model", p.chatModel)
	}

	return &providers.TranslateResult{
		Text:         reply.content,
		Truncated:    reply.truncated,
		TokensUsed:   reply.tokens,
		ProviderName: providerName,
		ModelName:    p.chatModel,
		TranslatedAt: time.Now(),
	}, nil
}

// ExtractScenes sends a segmentation prompt and returns the raw JSON answer.
func (p *Provider) ExtractScenes(ctx context.Context, req providers.SceneRequest) (*providers.SceneResult, error) {
	reply, err := p.chat(ctx, "scenes", scenesSystemPrompt, req.Prompt, true)
	if err != nil {
		return nil, err
	}
	if reply.truncated {
		p.logger.Warn("scene response truncated by token limit", "chunk", req.ChunkIndex, "model", p.chatModel)
	}

	return &providers.SceneResult{
		Content:      reply.content,
		Truncated:    reply.truncated,
		TokensUsed:   reply.tokens,
		ProviderName: providerName,
		ModelName:    p.chatModel,
	}, nil
}

type chatReply struct {
	content   string
	truncated bool
	tokens    int
}

func (p *Provider) chat(ctx context.Context, op, system, user string, jsonMode bool) (reply chatReply, err error) {
	if !p.Available() {
		return reply, providers.NewCallError(providerName, op, providers.ReasonUnavailable, errors.New("OPENAI_API_KEY not set"))
	}
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return reply, providers.NewCallError(providerName, op, providers.ReasonCanceled, fmt.Errorf("rate limit wait failed; %w", err))
	}

	start := time.Now()
	defer func() {
		metrics.RecordProviderRequest(providerName, op, time.Since(start), reply.tokens, string(providers.ReasonOf(err)))
	}()

	request := goopenai.ChatCompletionRequest{
		Model: p.chatModel,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		Temperature:      temperature,
		TopP:             topP,
		N:                1,
		PresencePenalty:  presencePenalty,
		FrequencyPenalty: frequencyPenalty,
	}
	if jsonMode {
		request.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return reply, classify(op, err)
	}
	if len(resp.Choices) == 0 {
		return reply, providers.NewCallError(providerName, op, providers.ReasonMalformedResponse, errors.New("no response choices returned"))
	}

	choice := resp.Choices[0]
	reply = chatReply{
		content:   strings.TrimSpace(choice.Message.Content),
		truncated: choice.FinishReason == goopenai.FinishReasonLength,
		tokens:    resp.Usage.TotalTokens,
	}
	if reply.content == "" {
		return reply, providers.NewCallError(providerName, op, providers.ReasonMalformedResponse, errors.New("empty response content"))
	}
	return reply, nil
}

// GenerateImage renders a prompt to PNG bytes.
func (p *Provider) GenerateImage(ctx context.Context, req providers.ImageRequest) (result *providers.ImageResult, err error) {
	const op = "image"

	if !p.Available() {
		return nil, providers.NewCallError(providerName, op, providers.ReasonUnavailable, errors.New("OPENAI_API_KEY not set"))
	}
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, providers.NewCallError(providerName, op, providers.ReasonCanceled, fmt.Errorf("rate limit wait failed; %w", err))
	}

	start := time.Now()
	defer func() {
		metrics.RecordProviderRequest(providerName, op, time.Since(start), 0, string(providers.ReasonOf(err)))
	}()

	size := req.Size
	if size == "" {
		size = defaultImageSize
	}

	resp, err := p.client.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          p.imageModel,
		N:              1,
		Size:           size,
		ResponseFormat: goopenai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, classify(op, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, providers.NewCallError(providerName, op, providers.ReasonMalformedResponse, errors.New("no image data returned"))
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, providers.NewCallError(providerName, op, providers.ReasonMalformedResponse, fmt.Errorf("failed to decode image; %w", err))
	}

	return &providers.ImageResult{
		Data:          data,
		RevisedPrompt: resp.Data[0].RevisedPrompt,
		ProviderName:  providerName,
		ModelName:     p.imageModel,
	}, nil
}

// Synthesize converts text to MP3 audio.
func (p *Provider) Synthesize(ctx context.Context, req providers.SpeechRequest) (result *providers.SpeechResult, err error) {
	const op = "speech"

	if !p.Available() {
		return nil, providers.NewCallError(providerName, op, providers.ReasonUnavailable, errors.New("OPENAI_API_KEY not set"))
	}
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, providers.NewCallError(providerName, op, providers.ReasonCanceled, fmt.Errorf("rate limit wait failed; %w", err))
	}

	start := time.Now()
	defer func() {
		metrics.RecordProviderRequest(providerName, op, time.Since(start), 0, string(providers.ReasonOf(err)))
	}()

	voice := p.voice
	if req.Voice != "" {
		voice = goopenai.SpeechVoice(req.Voice)
	}

	resp, err := p.client.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          p.speechModel,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: goopenai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, classify(op, err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, providers.NewCallError(providerName, op, providers.ReasonAPIError, fmt.Errorf("failed to read audio; %w", err))
	}
	if len(audio) == 0 {
		return nil, providers.NewCallError(providerName, op, providers.ReasonMalformedResponse, errors.New("empty audio returned"))
	}

	return &providers.SpeechResult{
		Audio:        audio,
		Format:       "mp3",
		ProviderName: providerName,
	}, nil
}

// classify converts a client error into a CallError.
func classify(op string, err error) *providers.CallError {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return providers.StatusError(providerName, op, apiErr.HTTPStatusCode, err)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return providers.StatusError(providerName, op, reqErr.HTTPStatusCode, err)
	}

	return providers.NewCallError(providerName, op, providers.ReasonAPIError, err)
}

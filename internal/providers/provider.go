package providers

import (
	"context"
	"time"
)

// Capability names what a provider can do for the pipeline.
type Capability string

const (
	CapabilityTranslate Capability = "translate"
	CapabilityScenes    Capability = "scenes"
	CapabilityImage     Capability = "image"
	CapabilitySpeech    Capability = "speech"
)

// Provider is the base interface for all providers.
type Provider interface {
	// Name returns the provider's unique identifier.
	Name() string

	// Available returns true if the provider is configured and ready.
	Available() bool

	// RateLimit returns the rate limit configuration for this provider.
	RateLimit() RateLimitConfig
}

// RateLimitConfig defines rate limiting parameters for a provider.
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int

	// MinInterval is the minimum delay between two consecutive calls.
	MinInterval time.Duration
}

// Translator translates text into a target language.
type Translator interface {
	Provider

	// Translate returns the translation of a single chunk.
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResult, error)

	// ModelName returns the model identifier used by this provider.
	ModelName() string
}

// TranslateRequest is a single chunk to translate.
type TranslateRequest struct {
	// Text is the source chunk.
	Text string

	// TargetLanguage is the language to translate into, e.g. "English".
	TargetLanguage string

	// ChunkIndex is the chunk's position in the document, used for logging.
	ChunkIndex int
}

// TranslateResult contains a chunk translation.
type TranslateResult struct {
	Text         string
	Truncated    bool
	TokensUsed   int
	ProviderName string
	ModelName    string
	TranslatedAt time.Time
}

// SceneExtractor asks a model to segment text into scenes.
type SceneExtractor interface {
	Provider

	// ExtractScenes returns the raw model response for a segmentation prompt.
	// Parsing the response is left to the caller.
	ExtractScenes(ctx context.Context, req SceneRequest) (*SceneResult, error)

	// ModelName returns the model identifier used by this provider.
	ModelName() string
}

// SceneRequest carries a rendered segmentation prompt.
type SceneRequest struct {
	Prompt     string
	ChunkIndex int
}

// SceneResult is the model's raw answer.
type SceneResult struct {
	Content      string
	Truncated    bool
	TokensUsed   int
	ProviderName string
	ModelName    string
}

// ImageGenerator renders an image from a prompt.
type ImageGenerator interface {
	Provider

	// GenerateImage returns PNG bytes for the prompt.
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
}

// ImageRequest describes an image to generate.
type ImageRequest struct {
	Prompt string

	// Size is the requested resolution, e.g. "1024x1024".
	Size string
}

// ImageResult holds a generated image.
type ImageResult struct {
	Data          []byte
	RevisedPrompt string
	ProviderName  string
	ModelName     string
}

// SpeechSynthesizer converts text to spoken audio.
type SpeechSynthesizer interface {
	Provider

	// Synthesize returns MP3 audio for the text.
	Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResult, error)
}

// SpeechRequest describes audio to synthesize.
type SpeechRequest struct {
	Text string

	// Voice is a provider-specific voice name. Optional.
	Voice string

	// Language is a BCP 47 language code such as "en". Optional.
	Language string
}

// SpeechResult holds synthesized audio.
type SpeechResult struct {
	Audio        []byte
	Format       string
	ProviderName string
}

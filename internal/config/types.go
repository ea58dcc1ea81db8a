package config

import "os"

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel    string          `yaml:"log_level" mapstructure:"log_level"`
	LogFile     string          `yaml:"log_file" mapstructure:"log_file"`
	OutputDir   string          `yaml:"output_dir" mapstructure:"output_dir"`
	CacheDir    string          `yaml:"cache_dir" mapstructure:"cache_dir"`
	MetricsFile string          `yaml:"metrics_file" mapstructure:"metrics_file"`
	Chunking    ChunkingConfig  `yaml:"chunking" mapstructure:"chunking"`
	Providers   ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Translate   TranslateConfig `yaml:"translate" mapstructure:"translate"`
	Segment     SegmentConfig   `yaml:"segment" mapstructure:"segment"`
	Images      ImagesConfig    `yaml:"images" mapstructure:"images"`
	Speech      SpeechConfig    `yaml:"speech" mapstructure:"speech"`
	Video       VideoConfig     `yaml:"video" mapstructure:"video"`
}

// ChunkingConfig holds the chunking policies used ahead of each model stage.
type ChunkingConfig struct {
	Translate SentenceChunkingConfig `yaml:"translate" mapstructure:"translate"`
	Segment   SegmentChunkingConfig  `yaml:"segment" mapstructure:"segment"`
}

// SentenceChunkingConfig configures sentence-boundary chunking.
type SentenceChunkingConfig struct {
	TargetSize   int    `yaml:"target_size" mapstructure:"target_size"`
	SearchRadius int    `yaml:"search_radius" mapstructure:"search_radius"`
	Terminators  string `yaml:"terminators" mapstructure:"terminators"`
}

// SegmentChunkingConfig configures size/overlap chunking.
type SegmentChunkingConfig struct {
	Strategy   string `yaml:"strategy" mapstructure:"strategy"`
	TargetSize int    `yaml:"target_size" mapstructure:"target_size"`
	Overlap    int    `yaml:"overlap" mapstructure:"overlap"`
}

// ProvidersConfig holds per-provider credentials and models.
type ProvidersConfig struct {
	OpenAI OpenAIConfig `yaml:"openai" mapstructure:"openai"`
	Google GoogleConfig `yaml:"google" mapstructure:"google"`
	GTTS   GTTSConfig   `yaml:"gtts" mapstructure:"gtts"`
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey            *string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	APIKeyEnv         string  `yaml:"api_key_env" mapstructure:"api_key_env"`
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	ChatModel         string  `yaml:"chat_model" mapstructure:"chat_model"`
	ImageModel        string  `yaml:"image_model" mapstructure:"image_model"`
	SpeechModel       string  `yaml:"speech_model" mapstructure:"speech_model"`
	Voice             string  `yaml:"voice" mapstructure:"voice"`
	RequestsPerMinute int     `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// ResolveAPIKey returns the API key from config or falls back to environment variable.
func (c *OpenAIConfig) ResolveAPIKey() string {
	if c.APIKey != nil && *c.APIKey != "" {
		return *c.APIKey
	}
	return os.Getenv(c.APIKeyEnv)
}

// GoogleConfig configures the Gemini provider.
type GoogleConfig struct {
	APIKey            *string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	APIKeyEnv         string  `yaml:"api_key_env" mapstructure:"api_key_env"`
	Endpoint          string  `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	Model             string  `yaml:"model" mapstructure:"model"`
	RequestsPerMinute int     `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// ResolveAPIKey returns the API key from config or falls back to environment variable.
func (c *GoogleConfig) ResolveAPIKey() string {
	if c.APIKey != nil && *c.APIKey != "" {
		return *c.APIKey
	}
	return os.Getenv(c.APIKeyEnv)
}

// GTTSConfig configures the Google Translate text-to-speech provider.
type GTTSConfig struct {
	BaseURL        string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// TranslateConfig configures the translation stage.
type TranslateConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"`
	TargetLanguage string `yaml:"target_language" mapstructure:"target_language"`
	DelayMs        int    `yaml:"delay_ms" mapstructure:"delay_ms"`
	Fallback       string `yaml:"fallback" mapstructure:"fallback"`
	Cache          bool   `yaml:"cache" mapstructure:"cache"`
}

// SegmentConfig configures the scene segmentation stage.
type SegmentConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"`
	DelayMs    int    `yaml:"delay_ms" mapstructure:"delay_ms"`
	Strict     bool   `yaml:"strict" mapstructure:"strict"`
	Cache      bool   `yaml:"cache" mapstructure:"cache"`
	PromptFile string `yaml:"prompt_file,omitempty" mapstructure:"prompt_file"`
}

// ImagesConfig configures the image stage.
type ImagesConfig struct {
	Provider        string            `yaml:"provider" mapstructure:"provider"`
	Size            string            `yaml:"size" mapstructure:"size"`
	DelayMs         int               `yaml:"delay_ms" mapstructure:"delay_ms"`
	ContinueOnError bool              `yaml:"continue_on_error" mapstructure:"continue_on_error"`
	VisualStyle     VisualStyleConfig `yaml:"visual_style" mapstructure:"visual_style"`
}

// VisualStyleConfig is the look applied to every generated image.
type VisualStyleConfig struct {
	Mood         string `yaml:"mood" mapstructure:"mood"`
	TimePeriod   string `yaml:"time_period" mapstructure:"time_period"`
	ArtStyle     string `yaml:"art_style" mapstructure:"art_style"`
	ColorPalette string `yaml:"color_palette" mapstructure:"color_palette"`
	Environment  string `yaml:"environment" mapstructure:"environment"`
	Weather      string `yaml:"weather" mapstructure:"weather"`
	Lighting     string `yaml:"lighting" mapstructure:"lighting"`
}

// SpeechConfig configures the narration stage.
type SpeechConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	Language string `yaml:"language" mapstructure:"language"`
	DelayMs  int    `yaml:"delay_ms" mapstructure:"delay_ms"`
}

// VideoConfig configures video assembly.
type VideoConfig struct {
	FFmpegPath   string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	AudioBitrate string `yaml:"audio_bitrate" mapstructure:"audio_bitrate"`
}

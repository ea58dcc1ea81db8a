package config

import "github.com/spf13/viper"

// Default configuration values.
const (
	DefaultLogLevel    = "info"
	DefaultLogFile     = "~/.config/narrator/narrator.log"
	DefaultOutputDir   = "./output"
	DefaultCacheDir    = "~/.cache/narrator"
	DefaultMetricsFile = ""

	// Chunking defaults.
	DefaultTranslateTargetSize   = 1000
	DefaultTranslateSearchRadius = 100
	DefaultTranslateTerminators  = "."
	DefaultSegmentStrategy       = "overlap"
	DefaultSegmentTargetSize     = 2000
	DefaultSegmentOverlap        = 200

	// OpenAI defaults.
	DefaultOpenAIAPIKeyEnv   = "OPENAI_API_KEY"
	DefaultOpenAIChatModel   = "gpt-4-turbo"
	DefaultOpenAIImageModel  = "dall-e-3"
	DefaultOpenAISpeechModel = "tts-1"
	DefaultOpenAIVoice       = "onyx"

	// Google defaults.
	DefaultGoogleAPIKeyEnv = "GOOGLE_API_KEY"
	DefaultGoogleModel     = "gemini-1.5-flash"

	// gTTS defaults.
	DefaultGTTSTimeoutSeconds = 30

	// Stage defaults.
	DefaultTranslateProvider = "openai"
	DefaultTargetLanguage    = "Chinese"
	DefaultTranslateDelayMs  = 1000
	DefaultTranslateFallback = "verbatim"
	DefaultTranslateCache    = true
	DefaultSegmentProvider   = "openai"
	DefaultSegmentDelayMs    = 1000
	DefaultSegmentStrict     = false
	DefaultSegmentCache      = true
	DefaultImagesProvider    = "openai"
	DefaultImagesSize        = "1024x1024"
	DefaultImagesDelayMs     = 2000
	DefaultSpeechProvider    = "openai"
	DefaultSpeechLanguage    = "en"
	DefaultSpeechDelayMs     = 0
	DefaultFFmpegPath        = "ffmpeg"
	DefaultAudioBitrate      = "192k"

	// Visual style defaults.
	DefaultStyleMood         = "dark and eerie"
	DefaultStyleTimePeriod   = "the 1920s"
	DefaultStyleArtStyle     = "a gothic oil painting"
	DefaultStyleColorPalette = "muted green, grey and deep black"
	DefaultStyleEnvironment  = "a fog-covered coastal town"
	DefaultStyleWeather      = "a heavy storm sky"
	DefaultStyleLighting     = "dim, flickering lamplight"
)

// NewDefaultConfig returns a Config populated with default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel:    DefaultLogLevel,
		LogFile:     DefaultLogFile,
		OutputDir:   DefaultOutputDir,
		CacheDir:    DefaultCacheDir,
		MetricsFile: DefaultMetricsFile,
		Chunking: ChunkingConfig{
			Translate: SentenceChunkingConfig{
				TargetSize:   DefaultTranslateTargetSize,
				SearchRadius: DefaultTranslateSearchRadius,
				Terminators:  DefaultTranslateTerminators,
			},
			Segment: SegmentChunkingConfig{
				Strategy:   DefaultSegmentStrategy,
				TargetSize: DefaultSegmentTargetSize,
				Overlap:    DefaultSegmentOverlap,
			},
		},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				APIKeyEnv:   DefaultOpenAIAPIKeyEnv,
				ChatModel:   DefaultOpenAIChatModel,
				ImageModel:  DefaultOpenAIImageModel,
				SpeechModel: DefaultOpenAISpeechModel,
				Voice:       DefaultOpenAIVoice,
			},
			Google: GoogleConfig{
				APIKeyEnv: DefaultGoogleAPIKeyEnv,
				Model:     DefaultGoogleModel,
			},
			GTTS: GTTSConfig{
				TimeoutSeconds: DefaultGTTSTimeoutSeconds,
			},
		},
		Translate: TranslateConfig{
			Provider:       DefaultTranslateProvider,
			TargetLanguage: DefaultTargetLanguage,
			DelayMs:        DefaultTranslateDelayMs,
			Fallback:       DefaultTranslateFallback,
			Cache:          DefaultTranslateCache,
		},
		Segment: SegmentConfig{
			Provider: DefaultSegmentProvider,
			DelayMs:  DefaultSegmentDelayMs,
			Strict:   DefaultSegmentStrict,
			Cache:    DefaultSegmentCache,
		},
		Images: ImagesConfig{
			Provider: DefaultImagesProvider,
			Size:     DefaultImagesSize,
			DelayMs:  DefaultImagesDelayMs,
			VisualStyle: VisualStyleConfig{
				Mood:         DefaultStyleMood,
				TimePeriod:   DefaultStyleTimePeriod,
				ArtStyle:     DefaultStyleArtStyle,
				ColorPalette: DefaultStyleColorPalette,
				Environment:  DefaultStyleEnvironment,
				Weather:      DefaultStyleWeather,
				Lighting:     DefaultStyleLighting,
			},
		},
		Speech: SpeechConfig{
			Provider: DefaultSpeechProvider,
			Language: DefaultSpeechLanguage,
			DelayMs:  DefaultSpeechDelayMs,
		},
		Video: VideoConfig{
			FFmpegPath:   DefaultFFmpegPath,
			AudioBitrate: DefaultAudioBitrate,
		},
	}
}

// setViperDefaults registers all default configuration values with a viper instance.
// Every key is registered so environment overrides bind during Unmarshal.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("metrics_file", d.MetricsFile)

	// Chunking defaults
	v.SetDefault("chunking.translate.target_size", d.Chunking.Translate.TargetSize)
	v.SetDefault("chunking.translate.search_radius", d.Chunking.Translate.SearchRadius)
	v.SetDefault("chunking.translate.terminators", d.Chunking.Translate.Terminators)
	v.SetDefault("chunking.segment.strategy", d.Chunking.Segment.Strategy)
	v.SetDefault("chunking.segment.target_size", d.Chunking.Segment.TargetSize)
	v.SetDefault("chunking.segment.overlap", d.Chunking.Segment.Overlap)

	// Provider defaults
	v.SetDefault("providers.openai.api_key_env", d.Providers.OpenAI.APIKeyEnv)
	v.SetDefault("providers.openai.base_url", "")
	v.SetDefault("providers.openai.chat_model", d.Providers.OpenAI.ChatModel)
	v.SetDefault("providers.openai.image_model", d.Providers.OpenAI.ImageModel)
	v.SetDefault("providers.openai.speech_model", d.Providers.OpenAI.SpeechModel)
	v.SetDefault("providers.openai.voice", d.Providers.OpenAI.Voice)
	v.SetDefault("providers.openai.requests_per_minute", 0)
	v.SetDefault("providers.google.api_key_env", d.Providers.Google.APIKeyEnv)
	v.SetDefault("providers.google.endpoint", "")
	v.SetDefault("providers.google.model", d.Providers.Google.Model)
	v.SetDefault("providers.google.requests_per_minute", 0)
	v.SetDefault("providers.gtts.base_url", "")
	v.SetDefault("providers.gtts.timeout_seconds", d.Providers.GTTS.TimeoutSeconds)

	// Stage defaults
	v.SetDefault("translate.provider", d.Translate.Provider)
	v.SetDefault("translate.target_language", d.Translate.TargetLanguage)
	v.SetDefault("translate.delay_ms", d.Translate.DelayMs)
	v.SetDefault("translate.fallback", d.Translate.Fallback)
	v.SetDefault("translate.cache", d.Translate.Cache)
	v.SetDefault("segment.provider", d.Segment.Provider)
	v.SetDefault("segment.delay_ms", d.Segment.DelayMs)
	v.SetDefault("segment.strict", d.Segment.Strict)
	v.SetDefault("segment.cache", d.Segment.Cache)
	v.SetDefault("segment.prompt_file", "")
	v.SetDefault("images.provider", d.Images.Provider)
	v.SetDefault("images.size", d.Images.Size)
	v.SetDefault("images.delay_ms", d.Images.DelayMs)
	v.SetDefault("images.continue_on_error", d.Images.ContinueOnError)
	v.SetDefault("images.visual_style.mood", d.Images.VisualStyle.Mood)
	v.SetDefault("images.visual_style.time_period", d.Images.VisualStyle.TimePeriod)
	v.SetDefault("images.visual_style.art_style", d.Images.VisualStyle.ArtStyle)
	v.SetDefault("images.visual_style.color_palette", d.Images.VisualStyle.ColorPalette)
	v.SetDefault("images.visual_style.environment", d.Images.VisualStyle.Environment)
	v.SetDefault("images.visual_style.weather", d.Images.VisualStyle.Weather)
	v.SetDefault("images.visual_style.lighting", d.Images.VisualStyle.Lighting)
	v.SetDefault("speech.provider", d.Speech.Provider)
	v.SetDefault("speech.language", d.Speech.Language)
	v.SetDefault("speech.delay_ms", d.Speech.DelayMs)
	v.SetDefault("video.ffmpeg_path", d.Video.FFmpegPath)
	v.SetDefault("video.audio_bitrate", d.Video.AudioBitrate)
}

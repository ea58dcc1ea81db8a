package media

import (
	"log/slog"
	"time"

	"github.com/leefowlercu/novel-narrator/internal/providers"
)

// Report summarizes one media stage run.
type Report struct {
	Total   int
	Written int
	Skipped int

	// Failed lists the 1-based scene numbers that produced no file.
	Failed []int

	Duration time.Duration
}

type stageConfig struct {
	limiter         *providers.RateLimiter
	continueOnError bool
	skipExisting    bool
	style           VisualStyle
	imageSize       string
	voice           string
	language        string
	logger          *slog.Logger
}

func defaultStageConfig() stageConfig {
	return stageConfig{
		limiter: providers.NewRateLimiter(providers.RateLimitConfig{}),
		style:   DefaultVisualStyle(),
		logger:  slog.Default(),
	}
}

// Option configures a media stage.
type Option func(*stageConfig)

// WithDelay sets the fixed gap between consecutive provider calls.
func WithDelay(d time.Duration) Option {
	return func(c *stageConfig) {
		c.limiter = providers.NewRateLimiter(providers.RateLimitConfig{MinInterval: d})
	}
}

// WithContinueOnError records failed scenes and keeps going instead of
// returning the first error.
func WithContinueOnError(enabled bool) Option {
	return func(c *stageConfig) {
		c.continueOnError = enabled
	}
}

// WithSkipExisting leaves scenes whose output file already exists untouched.
func WithSkipExisting(enabled bool) Option {
	return func(c *stageConfig) {
		c.skipExisting = enabled
	}
}

// WithStyle sets the visual style used in image prompts.
func WithStyle(style VisualStyle) Option {
	return func(c *stageConfig) {
		c.style = style
	}
}

// WithImageSize sets the requested image size, such as "1024x1024".
func WithImageSize(size string) Option {
	return func(c *stageConfig) {
		c.imageSize = size
	}
}

// WithVoice sets the narration voice.
func WithVoice(voice string) Option {
	return func(c *stageConfig) {
		c.voice = voice
	}
}

// WithLanguage sets the narration language.
func WithLanguage(language string) Option {
	return func(c *stageConfig) {
		c.language = language
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *stageConfig) {
		c.logger = logger
	}
}

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/leefowlercu/novel-narrator/internal/chunkers"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

var (
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

	// Providers that implement each stage's capability.
	validTranslateProviders = []string{"openai", "google"}
	validSegmentProviders   = []string{"openai", "google"}
	validImagesProviders    = []string{"openai"}
	validSpeechProviders    = []string{"openai", "gtts"}

	validFallbacks = []string{"verbatim", "fail"}

	imageSizePattern = regexp.MustCompile(`^\d+x\d+$`)
	bitratePattern   = regexp.MustCompile(`^\d+k$`)
)

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		add("log_level", "must be one of: debug, info, warn, error; got %q", cfg.LogLevel)
	}

	if cfg.OutputDir == "" {
		add("output_dir", "must not be empty")
	}

	// Validate chunking config
	sentence := chunkers.Policy{
		TargetSize:   cfg.Chunking.Translate.TargetSize,
		SearchRadius: cfg.Chunking.Translate.SearchRadius,
		Terminators:  cfg.Chunking.Translate.Terminators,
	}
	if err := sentence.Validate(chunkers.StrategySentence); err != nil {
		add("chunking.translate", "%v", err)
	}

	strategy, err := chunkers.ParseStrategy(cfg.Chunking.Segment.Strategy)
	if err != nil {
		add("chunking.segment.strategy", "%v", err)
	} else {
		segment := chunkers.Policy{
			TargetSize: cfg.Chunking.Segment.TargetSize,
			Overlap:    cfg.Chunking.Segment.Overlap,
		}
		if err := segment.Validate(strategy); err != nil {
			add("chunking.segment", "%v", err)
		}
	}

	// Validate provider config
	if cfg.Providers.OpenAI.RequestsPerMinute < 0 {
		add("providers.openai.requests_per_minute", "must be non-negative, got %d", cfg.Providers.OpenAI.RequestsPerMinute)
	}
	if cfg.Providers.Google.RequestsPerMinute < 0 {
		add("providers.google.requests_per_minute", "must be non-negative, got %d", cfg.Providers.Google.RequestsPerMinute)
	}
	if cfg.Providers.GTTS.TimeoutSeconds < 1 {
		add("providers.gtts.timeout_seconds", "must be at least 1 second, got %d", cfg.Providers.GTTS.TimeoutSeconds)
	}

	// Validate stage config
	checkOneOf(&errs, "translate.provider", cfg.Translate.Provider, validTranslateProviders)
	checkOneOf(&errs, "translate.fallback", cfg.Translate.Fallback, validFallbacks)
	if strings.TrimSpace(cfg.Translate.TargetLanguage) == "" {
		add("translate.target_language", "must not be empty")
	}
	checkDelay(&errs, "translate.delay_ms", cfg.Translate.DelayMs)

	checkOneOf(&errs, "segment.provider", cfg.Segment.Provider, validSegmentProviders)
	checkDelay(&errs, "segment.delay_ms", cfg.Segment.DelayMs)

	checkOneOf(&errs, "images.provider", cfg.Images.Provider, validImagesProviders)
	if !imageSizePattern.MatchString(cfg.Images.Size) {
		add("images.size", "must look like 1024x1024, got %q", cfg.Images.Size)
	}
	checkDelay(&errs, "images.delay_ms", cfg.Images.DelayMs)

	checkOneOf(&errs, "speech.provider", cfg.Speech.Provider, validSpeechProviders)
	checkDelay(&errs, "speech.delay_ms", cfg.Speech.DelayMs)

	if cfg.Video.FFmpegPath == "" {
		add("video.ffmpeg_path", "must not be empty")
	}
	if !bitratePattern.MatchString(cfg.Video.AudioBitrate) {
		add("video.audio_bitrate", "must look like 192k, got %q", cfg.Video.AudioBitrate)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func checkOneOf(errs *ValidationErrors, field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	msg := fmt.Sprintf("must be one of: %s; got %q", strings.Join(allowed, ", "), value)
	if value == "" {
		msg = "must not be empty"
	}
	*errs = append(*errs, ValidationError{Field: field, Message: msg})
}

func checkDelay(errs *ValidationErrors, field string, ms int) {
	if ms < 0 {
		*errs = append(*errs, ValidationError{Field: field, Message: fmt.Sprintf("must be non-negative, got %d", ms)})
	}
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}

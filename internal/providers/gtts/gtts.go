// Package gtts synthesizes speech with the Google Translate text-to-speech endpoint.
package gtts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/leefowlercu/novel-narrator/internal/metrics"
	"github.com/leefowlercu/novel-narrator/internal/providers"
)

const (
	providerName = "gtts"

	defaultBaseURL  = "https://translate.google.com"
	defaultLanguage = "en"
	ttsPath         = "/translate_tts"

	// MaxPieceRunes is the longest text the endpoint accepts in one request.
	MaxPieceRunes = 200
)

// Provider implements providers.SpeechSynthesizer.
type Provider struct {
	baseURL   string
	language  string
	timeout   time.Duration
	rateLimit providers.RateLimitConfig
	logger    *slog.Logger

	client      *resty.Client
	rateLimiter *providers.RateLimiter
}

// Option configures the Provider.
type Option func(*Provider)

// WithBaseURL overrides the endpoint host.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		p.baseURL = url
	}
}

// WithLanguage sets the default language code.
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		if lang != "" {
			p.language = lang
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.timeout = d
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

// New creates a new gTTS provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL:  defaultBaseURL,
		language: defaultLanguage,
		timeout:  30 * time.Second,
		rateLimit: providers.RateLimitConfig{
			RequestsPerMinute: 120,
			BurstSize:         5,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.client = resty.New().
		SetBaseURL(p.baseURL).
		SetTimeout(p.timeout).
		SetHeader("User-Agent", "Mozilla/5.0").
		SetHeader("Accept", "audio/mpeg")
	p.rateLimiter = providers.NewRateLimiter(p.rateLimit)
	p.logger = p.logger.With("provider", providerName)

	return p
}

// Name returns the provider's unique identifier.
func (p *Provider) Name() string {
	return providerName
}

// Available always returns true; the endpoint needs no credentials.
func (p *Provider) Available() bool {
	return true
}

// RateLimit returns the rate limit configuration.
func (p *Provider) RateLimit() providers.RateLimitConfig {
	return p.rateLimit
}

// Synthesize converts text to MP3 audio. Long text is sent in pieces and the
// resulting MP3 segments are concatenated.
func (p *Provider) Synthesize(ctx context.Context, req providers.SpeechRequest) (result *providers.SpeechResult, err error) {
	const op = "speech"

	pieces := SplitText(req.Text, MaxPieceRunes)
	if len(pieces) == 0 {
		return nil, providers.NewCallError(providerName, op, providers.ReasonAPIError, errors.New("no text to synthesize"))
	}

	lang := req.Language
	if lang == "" {
		lang = p.language
	}

	start := time.Now()
	defer func() {
		metrics.RecordProviderRequest(providerName, op, time.Since(start), 0, string(providers.ReasonOf(err)))
	}()

	var audio bytes.Buffer
	for i, piece := range pieces {
		if err := p.rateLimiter.Wait(ctx); err != nil {
			return nil, providers.NewCallError(providerName, op, providers.ReasonCanceled, fmt.Errorf("rate limit wait failed; %w", err))
		}

		resp, err := p.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"ie":      "UTF-8",
				"client":  "tw-ob",
				"tl":      lang,
				"q":       piece,
				"total":   strconv.Itoa(len(pieces)),
				"idx":     strconv.Itoa(i),
				"textlen": strconv.Itoa(utf8.RuneCountInString(piece)),
			}).
			Get(ttsPath)
		if err != nil {
			reason := providers.ReasonAPIError
			if ctxErr := ctx.Err(); ctxErr != nil {
				// The transport error does not always wrap the context error.
				reason = providers.ReasonCanceled
				if errors.Is(ctxErr, context.DeadlineExceeded) {
					reason = providers.ReasonTimeout
				}
			}
			return nil, providers.NewCallError(providerName, op, reason, fmt.Errorf("request for piece %d failed; %w", i, err))
		}
		if resp.IsError() {
			return nil, providers.StatusError(providerName, op, resp.StatusCode(), fmt.Errorf("piece %d: %s", i, resp.Status()))
		}
		if len(resp.Body()) == 0 {
			return nil, providers.NewCallError(providerName, op, providers.ReasonMalformedResponse, fmt.Errorf("piece %d returned no audio", i))
		}

		audio.Write(resp.Body())
	}

	p.logger.Debug("speech synthesized", "pieces", len(pieces), "bytes", audio.Len())

	return &providers.SpeechResult{
		Audio:        audio.Bytes(),
		Format:       "mp3",
		ProviderName: providerName,
	}, nil
}

// SplitText breaks text into pieces of at most maxRunes runes, cutting on
// whitespace where possible. Words longer than maxRunes are split hard.
func SplitText(text string, maxRunes int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || maxRunes <= 0 {
		return nil
	}

	var pieces []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			pieces = append(pieces, string(current))
			current = current[:0]
		}
	}

	for _, word := range words {
		w := []rune(word)

		for len(w) > maxRunes {
			flush()
			pieces = append(pieces, string(w[:maxRunes]))
			w = w[maxRunes:]
		}

		switch {
		case len(current) == 0:
			current = append(current, w...)
		case len(current)+1+len(w) <= maxRunes:
			current = append(current, ' ')
			current = append(current, w...)
		default:
			flush()
			current = append(current, w...)
		}
	}
	flush()

	return pieces
}

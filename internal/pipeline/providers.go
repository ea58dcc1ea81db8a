package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/providers"
	"github.com/leefowlercu/novel-narrator/internal/providers/google"
	"github.com/leefowlercu/novel-narrator/internal/providers/gtts"
	"github.com/leefowlercu/novel-narrator/internal/providers/openai"
)

// NewProviderRegistry builds a registry holding every configured provider.
// The returned closers release provider clients.
func NewProviderRegistry(cfg *config.Config, logger *slog.Logger) (*providers.Registry, []io.Closer, error) {
	registry := providers.NewRegistry()

	oa := cfg.Providers.OpenAI
	openaiOpts := []openai.Option{
		openai.WithAPIKey(oa.ResolveAPIKey()),
		openai.WithModel(oa.ChatModel),
		openai.WithImageModel(oa.ImageModel),
		openai.WithSpeechModel(oa.SpeechModel),
		openai.WithVoice(oa.Voice),
		openai.WithLogger(logger),
	}
	if oa.BaseURL != "" {
		openaiOpts = append(openaiOpts, openai.WithBaseURL(oa.BaseURL))
	}
	if oa.RequestsPerMinute > 0 {
		openaiOpts = append(openaiOpts, openai.WithRateLimit(providers.RateLimitConfig{
			RequestsPerMinute: oa.RequestsPerMinute,
			BurstSize:         1,
		}))
	}

	g := cfg.Providers.Google
	googleOpts := []google.Option{
		google.WithAPIKey(g.ResolveAPIKey()),
		google.WithModel(g.Model),
		google.WithLogger(logger),
	}
	if g.Endpoint != "" {
		googleOpts = append(googleOpts, google.WithEndpoint(g.Endpoint))
	}
	if g.RequestsPerMinute > 0 {
		googleOpts = append(googleOpts, google.WithRateLimit(providers.RateLimitConfig{
			RequestsPerMinute: g.RequestsPerMinute,
			BurstSize:         1,
		}))
	}

	t := cfg.Providers.GTTS
	gttsOpts := []gtts.Option{
		gtts.WithLanguage(cfg.Speech.Language),
		gtts.WithTimeout(time.Duration(t.TimeoutSeconds) * time.Second),
		gtts.WithLogger(logger),
	}
	if t.BaseURL != "" {
		gttsOpts = append(gttsOpts, gtts.WithBaseURL(t.BaseURL))
	}

	googleProvider := google.New(googleOpts...)
	for _, p := range []providers.Provider{
		openai.New(openaiOpts...),
		googleProvider,
		gtts.New(gttsOpts...),
	} {
		if err := registry.Register(p); err != nil {
			return nil, nil, fmt.Errorf("failed to register provider %s; %w", p.Name(), err)
		}
	}

	return registry, []io.Closer{googleProvider}, nil
}

// available fails with an unavailable CallError when p cannot serve requests,
// typically because its API key is not set.
func available(p providers.Provider, op string) error {
	if p.Available() {
		return nil
	}
	return providers.NewCallError(p.Name(), op, providers.ReasonUnavailable,
		fmt.Errorf("provider %s is not configured; check its API key", p.Name()))
}

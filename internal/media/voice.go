package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leefowlercu/novel-narrator/internal/fsutil"
	"github.com/leefowlercu/novel-narrator/internal/metrics"
	"github.com/leefowlercu/novel-narrator/internal/providers"
	"github.com/leefowlercu/novel-narrator/internal/scenes"
)

// ErrNoNarration is returned for a scene with neither original text nor a summary.
var ErrNoNarration = errors.New("scene has no text to narrate")

// VoiceStage narrates each scene's original text to an MP3 file.
type VoiceStage struct {
	synthesizer providers.SpeechSynthesizer
	layout      Layout
	cfg         stageConfig
}

// NewVoiceStage creates a voice stage writing into layout.
func NewVoiceStage(synthesizer providers.SpeechSynthesizer, layout Layout, opts ...Option) (*VoiceStage, error) {
	if synthesizer == nil {
		return nil, errors.New("speech synthesizer is required")
	}

	cfg := defaultStageConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.logger = cfg.logger.With("component", "voice", "provider", synthesizer.Name())

	return &VoiceStage{synthesizer: synthesizer, layout: layout, cfg: cfg}, nil
}

// Run synthesizes narration for every scene in order. The first failure is
// returned unless the stage continues on error.
func (s *VoiceStage) Run(ctx context.Context, list []scenes.Scene) (*Report, error) {
	start := time.Now()
	report := &Report{Total: len(list)}

	if err := s.layout.Ensure(); err != nil {
		return nil, err
	}

	for i, scene := range list {
		n := i + 1
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		path := s.layout.VoicePath(n)
		if s.cfg.skipExisting && fsutil.Exists(path) {
			s.cfg.logger.Debug("narration exists; skipping", "scene", n)
			report.Skipped++
			continue
		}

		if err := s.narrate(ctx, scene, path); err != nil {
			if ctx.Err() != nil || !s.cfg.continueOnError {
				report.Duration = time.Since(start)
				return report, fmt.Errorf("scene %d/%d; %w", n, len(list), err)
			}
			s.cfg.logger.Error("narration failed", "scene", n, "total", len(list), "error", err)
			report.Failed = append(report.Failed, n)
			continue
		}

		s.cfg.logger.Info("narration saved", "scene", n, "total", len(list), "path", path)
		metrics.RecordArtifact("voice")
		report.Written++
	}

	report.Duration = time.Since(start)
	return report, nil
}

// narrationText prefers the scene's original text and falls back to its summary.
func narrationText(scene scenes.Scene) (string, error) {
	if text := strings.TrimSpace(scene.OriginalText); text != "" {
		return text, nil
	}
	if text := strings.TrimSpace(scene.Summary); text != "" {
		return text, nil
	}
	return "", ErrNoNarration
}

func (s *VoiceStage) narrate(ctx context.Context, scene scenes.Scene, path string) error {
	text, err := narrationText(scene)
	if err != nil {
		return err
	}

	if err := s.cfg.limiter.Wait(ctx); err != nil {
		return err
	}

	result, err := s.synthesizer.Synthesize(ctx, providers.SpeechRequest{
		Text:     text,
		Voice:    s.cfg.voice,
		Language: s.cfg.language,
	})
	if err != nil {
		return err
	}
	if len(result.Audio) == 0 {
		return providers.NewCallError(s.synthesizer.Name(), "speech", providers.ReasonMalformedResponse, errors.New("empty audio"))
	}

	if err := fsutil.WriteFileAtomic(path, result.Audio, 0644); err != nil {
		return fmt.Errorf("failed to save narration; %w", err)
	}
	return nil
}

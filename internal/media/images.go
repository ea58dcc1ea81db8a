package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leefowlercu/novel-narrator/internal/fsutil"
	"github.com/leefowlercu/novel-narrator/internal/metrics"
	"github.com/leefowlercu/novel-narrator/internal/providers"
	"github.com/leefowlercu/novel-narrator/internal/scenes"
)

// ImageStage renders one PNG per scene.
type ImageStage struct {
	generator providers.ImageGenerator
	layout    Layout
	cfg       stageConfig
}

// NewImageStage creates an image stage writing into layout.
func NewImageStage(generator providers.ImageGenerator, layout Layout, opts ...Option) (*ImageStage, error) {
	if generator == nil {
		return nil, errors.New("image generator is required")
	}

	cfg := defaultStageConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.logger = cfg.logger.With("component", "images", "provider", generator.Name())

	return &ImageStage{generator: generator, layout: layout, cfg: cfg}, nil
}

// Run generates an image for every scene in order.
func (s *ImageStage) Run(ctx context.Context, list []scenes.Scene) (*Report, error) {
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

		path := s.layout.ImagePath(n)
		if s.cfg.skipExisting && fsutil.Exists(path) {
			s.cfg.logger.Debug("image exists; skipping", "scene", n)
			report.Skipped++
			continue
		}

		if err := s.render(ctx, scene, path); err != nil {
			if ctx.Err() != nil || !s.cfg.continueOnError {
				report.Duration = time.Since(start)
				return report, fmt.Errorf("scene %d/%d; %w", n, len(list), err)
			}
			s.cfg.logger.Error("image generation failed", "scene", n, "total", len(list), "error", err)
			report.Failed = append(report.Failed, n)
			continue
		}

		s.cfg.logger.Info("image saved", "scene", n, "total", len(list), "path", path)
		metrics.RecordArtifact("image")
		report.Written++
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (s *ImageStage) render(ctx context.Context, scene scenes.Scene, path string) error {
	if err := s.cfg.limiter.Wait(ctx); err != nil {
		return err
	}

	prompt := ImagePrompt(scene, s.cfg.style)
	s.cfg.logger.Debug("generating image", "scene_id", scene.SceneID, "prompt", prompt)

	result, err := s.generator.GenerateImage(ctx, providers.ImageRequest{
		Prompt: prompt,
		Size:   s.cfg.imageSize,
	})
	if err != nil {
		return err
	}
	if len(result.Data) == 0 {
		return providers.NewCallError(s.generator.Name(), "image", providers.ReasonMalformedResponse, errors.New("empty image data"))
	}
	if result.RevisedPrompt != "" {
		s.cfg.logger.Debug("provider revised prompt", "scene_id", scene.SceneID, "revised_prompt", result.RevisedPrompt)
	}

	if err := fsutil.WriteFileAtomic(path, result.Data, 0644); err != nil {
		return fmt.Errorf("failed to save image; %w", err)
	}
	return nil
}

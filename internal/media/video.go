package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leefowlercu/novel-narrator/internal/fsutil"
	"github.com/leefowlercu/novel-narrator/internal/metrics"
)

// ErrNoScenes is returned when there is nothing to assemble.
var ErrNoScenes = errors.New("no scenes to assemble")

// VideoStage assembles per-scene clips and concatenates them into the final video.
type VideoStage struct {
	runner  Runner
	ffmpeg  string
	bitrate string
	layout  Layout
	cfg     stageConfig
}

// VideoOption configures a VideoStage.
type VideoOption func(*VideoStage)

// WithRunner replaces the command runner.
func WithRunner(r Runner) VideoOption {
	return func(s *VideoStage) {
		s.runner = r
	}
}

// WithFFmpegPath sets the ffmpeg binary.
func WithFFmpegPath(path string) VideoOption {
	return func(s *VideoStage) {
		if path != "" {
			s.ffmpeg = path
		}
	}
}

// WithAudioBitrate sets the clip audio bitrate.
func WithAudioBitrate(bitrate string) VideoOption {
	return func(s *VideoStage) {
		if bitrate != "" {
			s.bitrate = bitrate
		}
	}
}

// WithStageOptions applies shared stage options such as the logger.
func WithStageOptions(opts ...Option) VideoOption {
	return func(s *VideoStage) {
		for _, opt := range opts {
			opt(&s.cfg)
		}
	}
}

// NewVideoStage creates a video stage reading from and writing into layout.
func NewVideoStage(layout Layout, opts ...VideoOption) *VideoStage {
	s := &VideoStage{
		ffmpeg:  DefaultFFmpegPath,
		bitrate: DefaultAudioBitrate,
		layout:  layout,
		cfg:     defaultStageConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = ExecRunner{Logger: s.cfg.logger}
	}
	s.cfg.logger = s.cfg.logger.With("component", "video")
	return s
}

// Run builds clips for scenes 1..count and joins them into the final video.
// A missing image or narration file stops the run before ffmpeg is invoked.
func (s *VideoStage) Run(ctx context.Context, count int) (*Report, error) {
	start := time.Now()
	report := &Report{Total: count}

	if count <= 0 {
		return nil, ErrNoScenes
	}
	for n := 1; n <= count; n++ {
		for _, path := range []string{s.layout.ImagePath(n), s.layout.VoicePath(n)} {
			if !fsutil.Exists(path) {
				return nil, fmt.Errorf("scene %d; missing input %s", n, path)
			}
		}
	}

	if err := s.layout.Ensure(); err != nil {
		return nil, err
	}

	for n := 1; n <= count; n++ {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		clip := s.layout.ClipPath(n)
		if s.cfg.skipExisting && fsutil.Exists(clip) {
			report.Skipped++
			continue
		}

		image, voice := s.layout.ImagePath(n), s.layout.VoicePath(n)
		err := render(ctx, s.runner, s.ffmpeg, clip, func(dst string) []string {
			return clipArgs(image, voice, dst, s.bitrate)
		})
		if err != nil {
			report.Duration = time.Since(start)
			report.Failed = append(report.Failed, n)
			return report, fmt.Errorf("failed to build clip %d/%d; %w", n, count, err)
		}

		s.cfg.logger.Info("clip generated", "scene", n, "total", count, "path", clip)
		metrics.RecordArtifact("clip")
		report.Written++
	}

	if err := fsutil.WriteFileAtomic(s.layout.ConcatListPath(), concatList(count), 0644); err != nil {
		report.Duration = time.Since(start)
		return report, fmt.Errorf("failed to write concat list; %w", err)
	}

	list := s.layout.ConcatListPath()
	err := render(ctx, s.runner, s.ffmpeg, s.layout.FinalPath(), func(dst string) []string {
		return concatArgs(list, dst)
	})
	if err != nil {
		report.Duration = time.Since(start)
		return report, fmt.Errorf("failed to concatenate clips; %w", err)
	}

	metrics.RecordArtifact("video")
	report.Duration = time.Since(start)
	s.cfg.logger.Info("video concatenation complete", "path", s.layout.FinalPath(), "clips", count, "duration", report.Duration)
	return report, nil
}

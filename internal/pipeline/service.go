// Package pipeline runs the novel-to-video stages against a configuration.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/leefowlercu/novel-narrator/internal/cache"
	"github.com/leefowlercu/novel-narrator/internal/chunkers"
	"github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/epub"
	"github.com/leefowlercu/novel-narrator/internal/fsutil"
	"github.com/leefowlercu/novel-narrator/internal/media"
	"github.com/leefowlercu/novel-narrator/internal/metrics"
	"github.com/leefowlercu/novel-narrator/internal/providers"
	"github.com/leefowlercu/novel-narrator/internal/scenes"
	"github.com/leefowlercu/novel-narrator/internal/translate"
)

// ErrUnsupportedFormat is returned for input files that are not text, HTML, or EPUB.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Stage names used in logs and metrics.
const (
	StageExtract   = "extract"
	StageSplit     = "split"
	StageTranslate = "translate"
	StageSegment   = "segment"
	StageImages    = "images"
	StageVoice     = "voice"
	StageVideo     = "video"
)

// Document is the plain text read from an input file.
type Document struct {
	Path   string
	Format fsutil.Format
	Title  string
	Author string
	Text   string
}

// Service runs pipeline stages with shared providers, chunkers, and caches.
type Service struct {
	cfg       *config.Config
	logger    *slog.Logger
	runID     string
	providers *providers.Registry
	chunkers  *chunkers.Registry
	runner    media.Runner
	closers   []io.Closer
}

// Option configures a Service.
type Option func(*Service)

// WithProviderRegistry replaces the registry built from configuration.
func WithProviderRegistry(r *providers.Registry) Option {
	return func(s *Service) {
		s.providers = r
	}
}

// WithRunner replaces the command runner used for ffmpeg.
func WithRunner(r media.Runner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithRunID sets the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(s *Service) {
		s.runID = id
	}
}

// New creates a Service. Unless a registry is supplied, providers are built
// from cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		cfg:      cfg,
		chunkers: chunkers.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	s.logger = logger.With("run_id", s.runID)

	if s.providers == nil {
		registry, closers, err := NewProviderRegistry(cfg, s.logger)
		if err != nil {
			return nil, err
		}
		s.providers = registry
		s.closers = closers
	}

	return s, nil
}

// RunID returns the identifier attached to every log line of this service.
func (s *Service) RunID() string {
	return s.runID
}

// Close releases provider clients.
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Extract reads path as plain text, EPUB, or HTML.
func (s *Service) Extract(ctx context.Context, path string) (doc *Document, err error) {
	defer s.record(StageExtract, time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input; %w", err)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	doc = &Document{Path: path, Format: fsutil.DetectFormat(path, head)}
	switch doc.Format {
	case fsutil.FormatEPUB:
		book, err := epub.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read epub; %w", err)
		}
		doc.Title, doc.Author, doc.Text = book.Title, book.Author, book.Text()
	case fsutil.FormatHTML:
		title, text, err := epub.ExtractText(data)
		if err != nil {
			return nil, fmt.Errorf("failed to read html; %w", err)
		}
		doc.Title, doc.Text = title, text
	case fsutil.FormatText:
		doc.Text = string(data)
	default:
		return nil, fmt.Errorf("%w; %s", ErrUnsupportedFormat, path)
	}

	s.logger.Info("document extracted",
		"path", path,
		"format", doc.Format,
		"title", doc.Title,
		"chars", len([]rune(doc.Text)))
	return doc, nil
}

// PolicyFor returns the configured chunking policy for strategy. The sentence
// strategy uses the translation policy; the others use the segmentation policy.
func (s *Service) PolicyFor(strategy chunkers.Strategy) chunkers.Policy {
	if strategy == chunkers.StrategySentence {
		c := s.cfg.Chunking.Translate
		return chunkers.Policy{TargetSize: c.TargetSize, SearchRadius: c.SearchRadius, Terminators: c.Terminators}
	}
	c := s.cfg.Chunking.Segment
	return chunkers.Policy{TargetSize: c.TargetSize, Overlap: c.Overlap}
}

// Split chunks text with strategy and its configured policy.
func (s *Service) Split(ctx context.Context, text string, strategy chunkers.Strategy) (result *chunkers.ChunkResult, err error) {
	defer s.record(StageSplit, time.Now(), &err)

	result, err = s.chunkers.Split(ctx, strategy, text, s.PolicyFor(strategy))
	if err != nil {
		return nil, err
	}
	metrics.RecordChunks(string(strategy), result.TotalChunks, result.NormalizedLength)
	return result, nil
}

// TranslateOptions adjusts one translation run.
type TranslateOptions struct {
	// StartIndex skips chunks already translated by an interrupted run.
	StartIndex int

	// Progress is called after each chunk is written.
	Progress func(translate.Progress)
}

// Translate translates text into the configured language, streaming chunks to w.
func (s *Service) Translate(ctx context.Context, text string, w io.Writer, opts TranslateOptions) (report *translate.Report, err error) {
	defer s.record(StageTranslate, time.Now(), &err)

	tcfg := s.cfg.Translate
	translator, err := s.providers.Translator(tcfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("translate provider %q; %w", tcfg.Provider, err)
	}
	if err := available(translator, "translate"); err != nil {
		return nil, err
	}

	fallback, err := translate.ParseFallback(tcfg.Fallback)
	if err != nil {
		return nil, err
	}

	pipeOpts := []translate.Option{
		translate.WithPolicy(s.PolicyFor(chunkers.StrategySentence)),
		translate.WithDelay(time.Duration(tcfg.DelayMs) * time.Millisecond),
		translate.WithFallback(fallback),
		translate.WithStartIndex(opts.StartIndex),
		translate.WithLogger(s.logger),
	}
	if opts.Progress != nil {
		pipeOpts = append(pipeOpts, translate.WithProgress(opts.Progress))
	}
	if tcfg.Cache {
		tc, err := cache.NewTranslationCache(s.cacheConfig(), translator.Name(), translator.ModelName(), tcfg.TargetLanguage)
		if err != nil {
			return nil, err
		}
		pipeOpts = append(pipeOpts, translate.WithCache(tc))
	}

	pipe, err := translate.New(translator, tcfg.TargetLanguage, pipeOpts...)
	if err != nil {
		return nil, err
	}
	return pipe.Translate(ctx, text, w)
}

// Segment extracts scenes from text.
func (s *Service) Segment(ctx context.Context, text string) (result *scenes.Result, err error) {
	defer s.record(StageSegment, time.Now(), &err)

	scfg := s.cfg.Segment
	extractor, err := s.providers.SceneExtractor(scfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("segment provider %q; %w", scfg.Provider, err)
	}
	if err := available(extractor, "scenes"); err != nil {
		return nil, err
	}

	strategy, err := chunkers.ParseStrategy(s.cfg.Chunking.Segment.Strategy)
	if err != nil {
		return nil, err
	}

	segOpts := []scenes.SegmenterOption{
		scenes.WithChunking(strategy, s.PolicyFor(strategy)),
		scenes.WithChunkerRegistry(s.chunkers),
		scenes.WithDelay(time.Duration(scfg.DelayMs) * time.Millisecond),
		scenes.WithStrict(scfg.Strict),
		scenes.WithLogger(s.logger),
	}
	if scfg.PromptFile != "" {
		tmpl, err := os.ReadFile(config.ExpandPath(scfg.PromptFile))
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file; %w", err)
		}
		builder, err := scenes.NewPromptBuilder(string(tmpl))
		if err != nil {
			return nil, err
		}
		segOpts = append(segOpts, scenes.WithPromptBuilder(builder))
	}
	if scfg.Cache {
		sc, err := cache.NewSceneCache(s.cacheConfig(), extractor.Name(), extractor.ModelName())
		if err != nil {
			return nil, err
		}
		segOpts = append(segOpts, scenes.WithCache(sc))
	}

	segmenter, err := scenes.NewSegmenter(extractor, segOpts...)
	if err != nil {
		return nil, err
	}

	return segmenter.Segment(ctx, text)
}

// StageOptions adjusts one media stage run.
type StageOptions struct {
	// SkipExisting keeps output files left by an earlier run.
	SkipExisting bool
}

// Images renders one image per scene into layout.
func (s *Service) Images(ctx context.Context, layout media.Layout, list []scenes.Scene, opts StageOptions) (report *media.Report, err error) {
	defer s.record(StageImages, time.Now(), &err)

	icfg := s.cfg.Images
	generator, err := s.providers.ImageGenerator(icfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("images provider %q; %w", icfg.Provider, err)
	}
	if err := available(generator, "image"); err != nil {
		return nil, err
	}

	stage, err := media.NewImageStage(generator, layout,
		media.WithStyle(visualStyle(icfg.VisualStyle)),
		media.WithImageSize(icfg.Size),
		media.WithDelay(time.Duration(icfg.DelayMs)*time.Millisecond),
		media.WithContinueOnError(icfg.ContinueOnError),
		media.WithSkipExisting(opts.SkipExisting),
		media.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	return stage.Run(ctx, list)
}

// Voice narrates each scene into layout.
func (s *Service) Voice(ctx context.Context, layout media.Layout, list []scenes.Scene, opts StageOptions) (report *media.Report, err error) {
	defer s.record(StageVoice, time.Now(), &err)

	vcfg := s.cfg.Speech
	synthesizer, err := s.providers.SpeechSynthesizer(vcfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("speech provider %q; %w", vcfg.Provider, err)
	}
	if err := available(synthesizer, "speech"); err != nil {
		return nil, err
	}

	stage, err := media.NewVoiceStage(synthesizer, layout,
		media.WithLanguage(vcfg.Language),
		media.WithDelay(time.Duration(vcfg.DelayMs)*time.Millisecond),
		media.WithSkipExisting(opts.SkipExisting),
		media.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	return stage.Run(ctx, list)
}

// Video assembles scenes 1..count in layout into the final video. A count of
// zero uses every scene that has both an image and narration.
func (s *Service) Video(ctx context.Context, layout media.Layout, count int, opts StageOptions) (report *media.Report, err error) {
	defer s.record(StageVideo, time.Now(), &err)

	if count == 0 {
		count = layout.SceneCount()
	}

	videoOpts := []media.VideoOption{
		media.WithFFmpegPath(s.cfg.Video.FFmpegPath),
		media.WithAudioBitrate(s.cfg.Video.AudioBitrate),
		media.WithStageOptions(media.WithSkipExisting(opts.SkipExisting), media.WithLogger(s.logger)),
	}
	if s.runner != nil {
		videoOpts = append(videoOpts, media.WithRunner(s.runner))
	}

	return media.NewVideoStage(layout, videoOpts...).Run(ctx, count)
}

func (s *Service) cacheConfig() cache.CacheConfig {
	return cache.CacheConfig{BaseDir: config.ExpandPath(s.cfg.CacheDir)}
}

// record logs and meters a finished stage.
func (s *Service) record(stage string, start time.Time, errp *error) {
	duration := time.Since(start)
	metrics.RecordStage(stage, duration, *errp)
	if *errp != nil {
		s.logger.Debug("stage failed", "stage", stage, "duration", duration, "error", *errp)
	}
}

func visualStyle(c config.VisualStyleConfig) media.VisualStyle {
	return media.VisualStyle{
		Mood:         c.Mood,
		TimePeriod:   c.TimePeriod,
		ArtStyle:     c.ArtStyle,
		ColorPalette: c.ColorPalette,
		Environment:  c.Environment,
		Weather:      c.Weather,
		Lighting:     c.Lighting,
	}
}

package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/leefowlercu/novel-narrator/internal/cache"
	"github.com/leefowlercu/novel-narrator/internal/chunkers"
	"github.com/leefowlercu/novel-narrator/internal/fsutil"
	"github.com/leefowlercu/novel-narrator/internal/media"
	"github.com/leefowlercu/novel-narrator/internal/scenes"
	"github.com/leefowlercu/novel-narrator/internal/translate"
)

// RunOptions adjusts a full pipeline run.
type RunOptions struct {
	// Translate runs the translation stage and segments the translated text.
	Translate bool

	// Resume reuses artifacts left in the project directory by an earlier run:
	// a complete translation and scene list are loaded, a stopped translation
	// continues from its checkpoint, and media files that already exist are kept.
	Resume bool

	// NoVideo stops after narration.
	NoVideo bool
}

// RunReport summarizes a full pipeline run.
type RunReport struct {
	RunID     string
	Document  *Document
	Translate *translate.Report
	Segment   *scenes.Result
	Images    *media.Report
	Voice     *media.Report
	Video     *media.Report
	Output    string
	Duration  time.Duration
}

// Run takes one input document through every stage into the project directory dir.
func (s *Service) Run(ctx context.Context, input, dir string, opts RunOptions) (*RunReport, error) {
	start := time.Now()
	layout := media.NewLayout(dir)
	report := &RunReport{RunID: s.runID}

	if err := layout.Ensure(); err != nil {
		return nil, err
	}

	doc, err := s.Extract(ctx, input)
	if err != nil {
		return report, err
	}
	report.Document = doc
	if blank(doc.Text) {
		return report, chunkers.ErrEmptyDocument
	}
	if err := fsutil.WriteFileAtomic(layout.SourcePath(), []byte(doc.Text), 0644); err != nil {
		return report, fmt.Errorf("failed to save source text; %w", err)
	}

	text := doc.Text
	if opts.Translate {
		text, err = s.runTranslate(ctx, layout, doc.Text, opts, report)
		if err != nil {
			return report, err
		}
	}

	list, err := s.runSegment(ctx, layout, text, opts, report)
	if err != nil {
		return report, err
	}

	stageOpts := StageOptions{SkipExisting: opts.Resume}

	report.Images, err = s.Images(ctx, layout, list, stageOpts)
	if err != nil {
		return report, err
	}
	if len(report.Images.Failed) > 0 {
		// Clips need every image, so assembly cannot proceed.
		return report, fmt.Errorf("images missing for scenes %v", report.Images.Failed)
	}

	report.Voice, err = s.Voice(ctx, layout, list, stageOpts)
	if err != nil {
		return report, err
	}

	if !opts.NoVideo {
		report.Video, err = s.Video(ctx, layout, len(list), stageOpts)
		if err != nil {
			return report, err
		}
		report.Output = layout.FinalPath()
	}

	report.Duration = time.Since(start)
	s.logger.Info("pipeline complete",
		"input", input,
		"scenes", len(list),
		"output", report.Output,
		"duration", report.Duration)
	return report, nil
}

// translationCheckpoint lets a resumed run continue a stopped translation. The
// key ties it to the source text and chunking policy that produced the chunks.
type translationCheckpoint struct {
	Key         string `json:"key"`
	NextIndex   int    `json:"next_index"`
	TotalChunks int    `json:"total_chunks"`
}

// runTranslate streams the translation into a part file and renames it into
// place only after the last chunk, so translation.txt is always complete.
func (s *Service) runTranslate(ctx context.Context, layout media.Layout, text string, opts RunOptions, report *RunReport) (string, error) {
	path := layout.TranslationPath()
	if opts.Resume && fsutil.Exists(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read translation; %w", err)
		}
		if !blank(string(data)) {
			s.logger.Info("reusing translation", "path", path)
			return string(data), nil
		}
	}

	key := s.checkpointKey(text)
	part := layout.TranslationPartPath()
	start := 0
	if opts.Resume {
		start = s.resumeIndex(layout, key)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if start > 0 {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		s.logger.Info("resuming translation", "path", part, "start_index", start)
	}
	f, err := os.OpenFile(part, flags, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create translation file; %w", err)
	}

	w := bufio.NewWriter(f)
	report.Translate, err = s.Translate(ctx, text, w, TranslateOptions{StartIndex: start})
	if flushErr := w.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("failed to write translation; %w", flushErr)
	}
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close translation file; %w", closeErr)
	}
	if err != nil {
		s.saveCheckpoint(layout, key, report.Translate)
		return "", err
	}

	if err := os.Rename(part, path); err != nil {
		return "", fmt.Errorf("failed to finalize translation; %w", err)
	}
	_ = os.Remove(layout.TranslationCheckpointPath())

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read translation; %w", err)
	}
	return string(data), nil
}

// checkpointKey identifies the chunk sequence a translation is built from.
func (s *Service) checkpointKey(text string) string {
	p := s.PolicyFor(chunkers.StrategySentence)
	return cache.HashContent(text, strconv.Itoa(p.TargetSize), strconv.Itoa(p.SearchRadius), p.Terminators, s.cfg.Translate.TargetLanguage)
}

// resumeIndex returns the chunk a stopped translation continues from, or 0
// when there is no usable checkpoint.
func (s *Service) resumeIndex(layout media.Layout, key string) int {
	if !fsutil.Exists(layout.TranslationPartPath()) {
		return 0
	}
	data, err := os.ReadFile(layout.TranslationCheckpointPath())
	if err != nil {
		return 0
	}
	var cp translationCheckpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		s.logger.Warn("ignoring unreadable translation checkpoint", "error", err)
		return 0
	}
	if cp.Key != key || cp.NextIndex < 0 || cp.NextIndex > cp.TotalChunks {
		s.logger.Info("translation checkpoint does not match the source; starting over")
		return 0
	}
	return cp.NextIndex
}

func (s *Service) saveCheckpoint(layout media.Layout, key string, r *translate.Report) {
	if r == nil {
		return
	}
	data, err := json.Marshal(translationCheckpoint{Key: key, NextIndex: r.NextIndex, TotalChunks: r.TotalChunks})
	if err != nil {
		return
	}
	if err := fsutil.WriteFileAtomic(layout.TranslationCheckpointPath(), data, 0644); err != nil {
		s.logger.Warn("failed to save translation checkpoint", "error", err)
		return
	}
	s.logger.Info("translation stopped; resume continues from checkpoint",
		"next_index", r.NextIndex,
		"total", r.TotalChunks)
}

func (s *Service) runSegment(ctx context.Context, layout media.Layout, text string, opts RunOptions, report *RunReport) ([]scenes.Scene, error) {
	path := layout.ScenesPath()
	if opts.Resume && fsutil.Exists(path) {
		list, err := scenes.Load(path)
		if err != nil {
			return nil, err
		}
		if len(list) > 0 {
			s.logger.Info("reusing scenes", "path", path, "scenes", len(list))
			return list, nil
		}
	}

	result, err := s.Segment(ctx, text)
	if err != nil {
		return nil, err
	}
	report.Segment = result

	if len(result.Scenes) == 0 {
		return nil, fmt.Errorf("no scenes extracted from %d chunks", result.TotalChunks)
	}
	if err := scenes.Save(path, result.Scenes); err != nil {
		return nil, err
	}
	return result.Scenes, nil
}

func blank(text string) bool {
	return strings.TrimSpace(text) == ""
}

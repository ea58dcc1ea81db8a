// Package media turns segmented scenes into images, narration, and a final video.
package media

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leefowlercu/novel-narrator/internal/fsutil"
)

const (
	imagesDir = "images"
	voicesDir = "voices"
	videosDir = "videos"

	sourceFile      = "source.txt"
	translationFile = "translation.txt"
	checkpointFile  = "translation.checkpoint.json"
	partSuffix      = ".part"
	scenesFile      = "scenes.json"
	concatListFile  = "video_list.txt"
	finalVideoFile  = "final_output.mp4"
)

// Layout names every artifact inside a project directory. Scene numbers are
// 1-based positions in the scene list.
type Layout struct {
	Root string
}

// NewLayout returns the layout rooted at dir.
func NewLayout(dir string) Layout {
	return Layout{Root: filepath.Clean(dir)}
}

// Ensure creates the project directory and its media subdirectories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Root, l.ImagesDir(), l.VoicesDir(), l.VideosDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s; %w", dir, err)
		}
	}
	return nil
}

func (l Layout) ImagesDir() string { return filepath.Join(l.Root, imagesDir) }
func (l Layout) VoicesDir() string { return filepath.Join(l.Root, voicesDir) }
func (l Layout) VideosDir() string { return filepath.Join(l.Root, videosDir) }

// SourcePath is the extracted plain text of the input document.
func (l Layout) SourcePath() string { return filepath.Join(l.Root, sourceFile) }

// TranslationPath is the translated text, one chunk per line.
func (l Layout) TranslationPath() string { return filepath.Join(l.Root, translationFile) }

// TranslationPartPath holds a translation in progress. It is renamed to
// TranslationPath once every chunk is written.
func (l Layout) TranslationPartPath() string { return l.TranslationPath() + partSuffix }

// TranslationCheckpointPath records how far a stopped translation got.
func (l Layout) TranslationCheckpointPath() string { return filepath.Join(l.Root, checkpointFile) }

// PartPath returns the name a media file is written under until it is complete.
func PartPath(path string) string { return path + partSuffix }

// ScenesPath is the segmented scene list.
func (l Layout) ScenesPath() string { return filepath.Join(l.Root, scenesFile) }

// ImagePath returns the image for scene n.
func (l Layout) ImagePath(n int) string {
	return filepath.Join(l.ImagesDir(), fmt.Sprintf("generated_image_%d.png", n))
}

// VoicePath returns the narration for scene n.
func (l Layout) VoicePath(n int) string {
	return filepath.Join(l.VoicesDir(), fmt.Sprintf("MP3_%d.mp3", n))
}

// ClipName returns the file name of the still-image clip for scene n.
func ClipName(n int) string {
	return fmt.Sprintf("temp_video_%d.mp4", n)
}

// ClipPath returns the still-image clip for scene n.
func (l Layout) ClipPath(n int) string {
	return filepath.Join(l.VideosDir(), ClipName(n))
}

// ConcatListPath is the ffmpeg concat demuxer list.
func (l Layout) ConcatListPath() string { return filepath.Join(l.VideosDir(), concatListFile) }

// FinalPath is the concatenated output video.
func (l Layout) FinalPath() string { return filepath.Join(l.Root, finalVideoFile) }

// SceneCount returns how many consecutive scenes, starting at 1, have both an
// image and a narration file.
func (l Layout) SceneCount() int {
	n := 0
	for fsutil.Exists(l.ImagePath(n+1)) && fsutil.Exists(l.VoicePath(n+1)) {
		n++
	}
	return n
}

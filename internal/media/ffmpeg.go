package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultFFmpegPath is the ffmpeg binary looked up on PATH.
const DefaultFFmpegPath = "ffmpeg"

// DefaultAudioBitrate is the AAC bitrate of every clip.
const DefaultAudioBitrate = "192k"

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	Logger *slog.Logger
}

// Run executes the command and returns an error carrying the tail of its
// standard error when it exits non-zero.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	logger.Debug("running command", "name", name, "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed; %w: %s", name, err, lastLines(stderr.String(), 5))
	}
	return nil
}

// IsFFmpegAvailable checks that the ffmpeg binary runs.
func IsFFmpegAvailable(path string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := exec.CommandContext(ctx, path, "-version").Run()
	available := err == nil
	slog.Debug("checking ffmpeg availability", "path", path, "available", available)
	return available
}

// render runs ffmpeg with args ending in a part name for output and renames the
// part into place only when ffmpeg succeeds. A failed or interrupted run leaves
// nothing at output.
func render(ctx context.Context, runner Runner, ffmpeg, output string, args func(dst string) []string) error {
	part := PartPath(output)
	if err := runner.Run(ctx, ffmpeg, args(part)...); err != nil {
		_ = os.Remove(part)
		return err
	}
	if err := os.Rename(part, output); err != nil {
		_ = os.Remove(part)
		return fmt.Errorf("failed to finalize %s; %w", output, err)
	}
	return nil
}

// clipArgs builds the arguments that turn one still image and one narration
// track into a clip as long as the narration. The container is named explicitly
// because output carries a part suffix.
func clipArgs(image, audio, output, bitrate string) []string {
	return []string{
		"-y",
		"-loop", "1", "-i", image,
		"-i", audio,
		"-c:v", "libx264", "-tune", "stillimage",
		"-c:a", "aac", "-b:a", bitrate,
		"-pix_fmt", "yuv420p",
		"-shortest", "-f", "mp4", output,
	}
}

// concatArgs builds the arguments that join the listed clips without re-encoding.
func concatArgs(list, output string) []string {
	return []string{
		"-y",
		"-f", "concat", "-safe", "0", "-i", list,
		"-c", "copy", "-f", "mp4", output,
	}
}

// concatList renders the concat demuxer list for clips 1..count. Names are
// relative to the list file's directory.
func concatList(count int) []byte {
	var b bytes.Buffer
	for n := 1; n <= count; n++ {
		fmt.Fprintf(&b, "file '%s'\n", ClipName(n))
	}
	return b.Bytes()
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

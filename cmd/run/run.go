// Package run implements the run command for the full novel-to-video pipeline.
package run

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/internal/cmdutil"
	"github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/media"
	"github.com/leefowlercu/novel-narrator/internal/pipeline"
)

// Flag variables for the run command.
var (
	runDir       string
	runTranslate bool
	runLanguage  string
	runResume    bool
	runNoVideo   bool
)

// RunCmd takes a novel through every stage.
var RunCmd = &cobra.Command{
	Use:   "run <input>",
	Short: "Turn a novel into a narrated video",
	Long: "Turn a novel into a narrated video.\n\n" +
		"Runs every stage in order: extract the text, optionally translate it, segment " +
		"it into scenes, illustrate and narrate each scene, then assemble the video. " +
		"Intermediate artifacts are kept in the project directory (source.txt, " +
		"translation.txt, scenes.json, images/, voices/, videos/) so that --resume can " +
		"pick up an interrupted run without repeating paid requests.",
	Example: `  # Full run into ./output
  narrator run novel.epub

  # Translate to English first and keep artifacts in ./my-novel
  narrator run novel.txt --dir ./my-novel --translate --language English

  # Resume an interrupted run
  narrator run novel.txt --dir ./my-novel --translate --resume`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateRun,
	RunE:    runRun,
}

func init() {
	RunCmd.Flags().StringVarP(&runDir, "dir", "d", "", "Project directory (default output_dir)")
	RunCmd.Flags().BoolVarP(&runTranslate, "translate", "t", false, "Translate the text before segmenting it")
	RunCmd.Flags().StringVarP(&runLanguage, "language", "l", "", "Target language (implies --translate)")
	RunCmd.Flags().BoolVar(&runResume, "resume", false, "Reuse artifacts left by an earlier run")
	RunCmd.Flags().BoolVar(&runNoVideo, "no-video", false, "Stop after narration")
}

func validateRun(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("cannot read input; %w", err)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := cmdutil.SignalContext()
	defer stop()

	if runLanguage != "" {
		config.Set("translate.target_language", runLanguage)
		runTranslate = true
	}

	if !runNoVideo {
		ffmpeg := config.GetString("video.ffmpeg_path")
		if !media.IsFFmpegAvailable(ffmpeg) {
			return fmt.Errorf("ffmpeg not found at %q; install it, set video.ffmpeg_path, or pass --no-video", ffmpeg)
		}
	}

	layout, err := cmdutil.ProjectLayout(runDir)
	if err != nil {
		return err
	}

	svc, err := cmdutil.NewService()
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.Run(ctx, args[0], layout.Root, pipeline.RunOptions{
		Translate: runTranslate,
		Resume:    runResume,
		NoVideo:   runNoVideo,
	})
	if report != nil {
		printReport(cmd.ErrOrStderr(), report)
	}
	if err != nil {
		return err
	}

	if report.Output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), report.Output)
	}
	return nil
}

func printReport(w io.Writer, r *pipeline.RunReport) {
	fmt.Fprintln(w, cmdutil.Title.Render("Run "+r.RunID))
	if r.Document != nil {
		title := r.Document.Title
		if title == "" {
			title = r.Document.Path
		}
		fmt.Fprintln(w, cmdutil.Field("Document", fmt.Sprintf("%s (%s)", title, r.Document.Format)))
	}
	if r.Translate != nil {
		fmt.Fprintln(w, cmdutil.Field("Translated", fmt.Sprintf("%d chunks, %d cached, %d kept original",
			r.Translate.TotalChunks, r.Translate.Cached, r.Translate.Fallbacks)))
	}
	if r.Segment != nil {
		fmt.Fprintln(w, cmdutil.Field("Scenes", fmt.Sprintf("%d from %d chunks, %d skipped",
			len(r.Segment.Scenes), r.Segment.TotalChunks, len(r.Segment.SkippedChunks))))
	}
	for _, stage := range []struct {
		label  string
		report *media.Report
	}{
		{"Images", r.Images},
		{"Narration", r.Voice},
		{"Clips", r.Video},
	} {
		if stage.report == nil {
			continue
		}
		fmt.Fprintln(w, cmdutil.Field(stage.label, fmt.Sprintf("%d written, %d kept, %d failed",
			stage.report.Written, stage.report.Skipped, len(stage.report.Failed))))
	}
	if r.Output != "" {
		fmt.Fprintln(w, cmdutil.Status(true, "video written to "+r.Output))
	}
	if r.Duration > 0 {
		fmt.Fprintln(w, cmdutil.Field("Duration", r.Duration.Round(time.Second)))
	}
}

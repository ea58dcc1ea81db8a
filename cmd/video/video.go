// Package video implements the video command for assembling the final video.
package video

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/internal/cmdutil"
	"github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/media"
	"github.com/leefowlercu/novel-narrator/internal/pipeline"
)

// Flag variables for the video command.
var (
	videoDir          string
	videoCount        int
	videoSkipExisting bool
)

// VideoCmd assembles images and narration into one video.
var VideoCmd = &cobra.Command{
	Use:   "video",
	Short: "Assemble scene images and narration into a video",
	Long: "Assemble scene images and narration into a video.\n\n" +
		"For each scene, ffmpeg loops the scene image for the length of its narration " +
		"into videos/temp_video_<n>.mp4. The clips are then concatenated in scene order " +
		"into final_output.mp4 in the project directory. Every image and narration file " +
		"must exist before any clip is built.",
	Example: `  # Assemble every scene in the project
  narrator video --dir ./output

  # Assemble only the first ten scenes
  narrator video --dir ./output --count 10`,
	Args:    cobra.NoArgs,
	PreRunE: validateVideo,
	RunE:    runVideo,
}

func init() {
	VideoCmd.Flags().StringVarP(&videoDir, "dir", "d", "", "Project directory (default output_dir)")
	VideoCmd.Flags().IntVarP(&videoCount, "count", "n", 0, "Number of scenes to assemble (default every complete scene)")
	VideoCmd.Flags().BoolVar(&videoSkipExisting, "skip-existing", false, "Reuse clips that already exist")
}

func validateVideo(cmd *cobra.Command, args []string) error {
	if videoCount < 0 {
		return fmt.Errorf("--count must be non-negative")
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runVideo(cmd *cobra.Command, args []string) error {
	ctx, stop := cmdutil.SignalContext()
	defer stop()

	ffmpeg := config.GetString("video.ffmpeg_path")
	if !media.IsFFmpegAvailable(ffmpeg) {
		return fmt.Errorf("ffmpeg not found at %q; install it or set video.ffmpeg_path", ffmpeg)
	}

	layout, err := cmdutil.ProjectLayout(videoDir)
	if err != nil {
		return err
	}

	svc, err := cmdutil.NewService()
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.Video(ctx, layout, videoCount, pipeline.StageOptions{SkipExisting: videoSkipExisting})
	if report != nil {
		cmdutil.PrintStageReport(cmd.ErrOrStderr(), "clips", layout.VideosDir(), report)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), layout.FinalPath())
	return nil
}

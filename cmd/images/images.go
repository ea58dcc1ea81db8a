// Package images implements the images command for illustrating scenes.
package images

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/internal/cmdutil"
	"github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/pipeline"
	"github.com/leefowlercu/novel-narrator/internal/scenes"
)

// Flag variables for the images command.
var (
	imagesDir             string
	imagesSkipExisting    bool
	imagesContinueOnError bool
)

// ImagesCmd renders one illustration per scene.
var ImagesCmd = &cobra.Command{
	Use:   "images <scenes.json>",
	Short: "Generate an illustration for each scene",
	Long: "Generate an illustration for each scene.\n\n" +
		"Builds a prompt from each scene and the configured visual style and writes " +
		"images/generated_image_<n>.png into the project directory, numbering scenes " +
		"from 1 in file order.",
	Example: `  # Illustrate every scene
  narrator images scenes.json --dir ./output

  # Fill in images missing after a failed run
  narrator images scenes.json --dir ./output --skip-existing --continue-on-error`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateImages,
	RunE:    runImages,
}

func init() {
	ImagesCmd.Flags().StringVarP(&imagesDir, "dir", "d", "", "Project directory (default output_dir)")
	ImagesCmd.Flags().BoolVar(&imagesSkipExisting, "skip-existing", false, "Keep images that already exist")
	ImagesCmd.Flags().BoolVar(&imagesContinueOnError, "continue-on-error", false, "Keep going when a scene fails")
}

func validateImages(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("cannot read scenes; %w", err)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runImages(cmd *cobra.Command, args []string) error {
	ctx, stop := cmdutil.SignalContext()
	defer stop()

	if cmd.Flags().Changed("continue-on-error") {
		config.Set("images.continue_on_error", imagesContinueOnError)
	}

	list, err := scenes.Load(args[0])
	if err != nil {
		return err
	}

	layout, err := cmdutil.ProjectLayout(imagesDir)
	if err != nil {
		return err
	}

	svc, err := cmdutil.NewService()
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.Images(ctx, layout, list, pipeline.StageOptions{SkipExisting: imagesSkipExisting})
	if report != nil {
		cmdutil.PrintStageReport(cmd.ErrOrStderr(), "images", layout.ImagesDir(), report)
	}
	return err
}

// Package voice implements the voice command for narrating scenes.
package voice

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/internal/cmdutil"
	"github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/pipeline"
	"github.com/leefowlercu/novel-narrator/internal/scenes"
)

// Flag variables for the voice command.
var (
	voiceDir          string
	voiceProvider     string
	voiceSkipExisting bool
)

// VoiceCmd synthesizes narration for every scene.
var VoiceCmd = &cobra.Command{
	Use:   "voice <scenes.json>",
	Short: "Synthesize narration for each scene",
	Long: "Synthesize narration for each scene.\n\n" +
		"Reads each scene's original text aloud, falling back to its summary, and " +
		"writes voices/MP3_<n>.mp3 into the project directory. Scenes are numbered " +
		"from 1 in file order.",
	Example: `  # Narrate with the configured provider
  narrator voice scenes.json --dir ./output

  # Narrate with Google Translate TTS
  narrator voice scenes.json --dir ./output --provider gtts`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateVoice,
	RunE:    runVoice,
}

func init() {
	VoiceCmd.Flags().StringVarP(&voiceDir, "dir", "d", "", "Project directory (default output_dir)")
	VoiceCmd.Flags().StringVarP(&voiceProvider, "provider", "p", "", "Speech provider (overrides speech.provider)")
	VoiceCmd.Flags().BoolVar(&voiceSkipExisting, "skip-existing", false, "Keep narration files that already exist")
}

func validateVoice(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("cannot read scenes; %w", err)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runVoice(cmd *cobra.Command, args []string) error {
	ctx, stop := cmdutil.SignalContext()
	defer stop()

	if voiceProvider != "" {
		config.Set("speech.provider", voiceProvider)
	}

	list, err := scenes.Load(args[0])
	if err != nil {
		return err
	}

	layout, err := cmdutil.ProjectLayout(voiceDir)
	if err != nil {
		return err
	}

	svc, err := cmdutil.NewService()
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.Voice(ctx, layout, list, pipeline.StageOptions{SkipExisting: voiceSkipExisting})
	if report != nil {
		cmdutil.PrintStageReport(cmd.ErrOrStderr(), "narration", layout.VoicesDir(), report)
	}
	return err
}

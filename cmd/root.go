package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/cmd/config"
	"github.com/leefowlercu/novel-narrator/cmd/extract"
	"github.com/leefowlercu/novel-narrator/cmd/images"
	"github.com/leefowlercu/novel-narrator/cmd/providers"
	"github.com/leefowlercu/novel-narrator/cmd/run"
	"github.com/leefowlercu/novel-narrator/cmd/segment"
	"github.com/leefowlercu/novel-narrator/cmd/split"
	"github.com/leefowlercu/novel-narrator/cmd/translate"
	"github.com/leefowlercu/novel-narrator/cmd/version"
	"github.com/leefowlercu/novel-narrator/cmd/video"
	"github.com/leefowlercu/novel-narrator/cmd/voice"
	internalconfig "github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/logging"
	"github.com/leefowlercu/novel-narrator/internal/metrics"
)

// logManager is the global logging manager, created in init() and upgraded after config loads
var logManager *logging.Manager

var configFile string

var narratorCmd = &cobra.Command{
	Use:   "narrator",
	Short: "Turn a novel into a narrated video",
	Long: "Narrator turns a novel into a narrated slideshow video.\n\n" +
		"The text is split into chunks, optionally translated, and segmented into scenes by a language model. " +
		"Each scene gets a generated illustration and a spoken narration, and ffmpeg assembles the clips into one video.\n\n" +
		"Every stage can be run on its own, or all of them at once with 'narrator run'.",
	PersistentPreRunE: runInitialize,
}

func init() {
	logManager = logging.NewManager()
	slog.SetDefault(logManager.Logger())

	narratorCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Config file (default: $NARRATOR_CONFIG_DIR/config.yaml or ~/.config/narrator/config.yaml)")

	narratorCmd.AddCommand(extract.ExtractCmd)
	narratorCmd.AddCommand(split.SplitCmd)
	narratorCmd.AddCommand(translate.TranslateCmd)
	narratorCmd.AddCommand(segment.SegmentCmd)
	narratorCmd.AddCommand(images.ImagesCmd)
	narratorCmd.AddCommand(voice.VoiceCmd)
	narratorCmd.AddCommand(video.VideoCmd)
	narratorCmd.AddCommand(run.RunCmd)
	narratorCmd.AddCommand(config.ConfigCmd)
	narratorCmd.AddCommand(providers.ProvidersCmd)
	narratorCmd.AddCommand(version.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	if err := internalconfig.Init(configFile); err != nil {
		return err
	}

	logFile := internalconfig.GetPath("log_file")
	levelStr := internalconfig.GetString("log_level")
	level, ok := logging.ParseLevel(levelStr)
	if !ok {
		level = logging.DefaultLevel
		if levelStr != "" {
			logger.Warn("invalid log level configured, using default", "configured", levelStr, "default", "info")
		}
	}

	if logFile != "" {
		if err := logManager.Upgrade(logFile, level); err != nil {
			logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
		}
	} else {
		logManager.SetLevel(level)
	}

	return nil
}

// writeMetrics dumps the run's metrics when metrics_file is configured, including
// after a failed command.
func writeMetrics() {
	path := internalconfig.GetPath("metrics_file")
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logManager.Logger().Warn("failed to write metrics", "path", path, "error", err)
	}
}

func Execute() error {
	narratorCmd.SilenceErrors = true
	narratorCmd.SilenceUsage = true

	defer func() { _ = logManager.Close() }()

	err := narratorCmd.Execute()
	writeMetrics()

	if err != nil {
		cmd, _, _ := narratorCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = narratorCmd
		}

		fmt.Printf("Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Printf("\n")
			cmd.SetOut(os.Stdout)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}

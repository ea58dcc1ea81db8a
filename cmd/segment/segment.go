// Package segment implements the segment command for extracting scenes.
package segment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/internal/cmdutil"
	"github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/scenes"
)

// Flag variables for the segment command.
var (
	segmentOutput   string
	segmentProvider string
	segmentStrict   bool
)

// SegmentCmd asks a language model to divide a novel into scenes.
var SegmentCmd = &cobra.Command{
	Use:   "segment <input>",
	Short: "Divide a novel into scenes",
	Long: "Divide a novel into scenes.\n\n" +
		"The text is split into overlapping chunks and the configured provider is asked " +
		"for the scenes in each chunk. Scenes are numbered from 1 across the whole " +
		"document and written as a JSON array. By default a chunk whose answer cannot be " +
		"parsed is skipped; --strict stops the run instead.",
	Example: `  # Segment a translation into scenes.json
  narrator segment translation.txt --output scenes.json

  # Fail on the first unparseable answer
  narrator segment novel.txt -o scenes.json --strict`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateSegment,
	RunE:    runSegment,
}

func init() {
	SegmentCmd.Flags().StringVarP(&segmentOutput, "output", "o", "", "Output file (default stdout)")
	SegmentCmd.Flags().StringVarP(&segmentProvider, "provider", "p", "", "Segmentation provider (overrides segment.provider)")
	SegmentCmd.Flags().BoolVar(&segmentStrict, "strict", false, "Stop on the first chunk whose scenes cannot be parsed")
}

func validateSegment(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("cannot read input; %w", err)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runSegment(cmd *cobra.Command, args []string) error {
	ctx, stop := cmdutil.SignalContext()
	defer stop()

	if segmentProvider != "" {
		config.Set("segment.provider", segmentProvider)
	}
	if cmd.Flags().Changed("strict") {
		config.Set("segment.strict", segmentStrict)
	}

	svc, err := cmdutil.NewService()
	if err != nil {
		return err
	}
	defer svc.Close()

	doc, err := svc.Extract(ctx, args[0])
	if err != nil {
		return err
	}

	result, err := svc.Segment(ctx, doc.Text)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if segmentOutput != "" {
		if err := scenes.Save(segmentOutput, result.Scenes); err != nil {
			return err
		}
	} else {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Scenes); err != nil {
			return fmt.Errorf("failed to write scenes; %w", err)
		}
	}

	fmt.Fprintln(stderr, cmdutil.Status(len(result.SkippedChunks) == 0,
		fmt.Sprintf("%d scenes from %d chunks", len(result.Scenes), result.TotalChunks)))
	if len(result.SkippedChunks) > 0 {
		fmt.Fprintln(stderr, cmdutil.WarningText.Render(cmdutil.Field("Skipped", fmt.Sprint(result.SkippedChunks))))
	}
	if result.CachedChunks > 0 {
		fmt.Fprintln(stderr, cmdutil.Field("Cached", result.CachedChunks))
	}
	return nil
}

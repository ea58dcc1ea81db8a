// Package split implements the split command for previewing chunk boundaries.
package split

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/internal/chunkers"
	"github.com/leefowlercu/novel-narrator/internal/cmdutil"
)

// Flag variables for the split command.
var (
	splitStrategy string
	splitJSON     bool
	splitFull     bool
)

const previewLength = 60

// SplitCmd shows how a document would be chunked.
var SplitCmd = &cobra.Command{
	Use:   "split <input>",
	Short: "Show how a novel is split into chunks",
	Long: "Show how a novel is split into chunks.\n\n" +
		"The sentence strategy cuts near the configured target size at a sentence " +
		"terminator and is used ahead of translation. The overlap and recursive " +
		"strategies repeat a tail of each chunk at the start of the next and are " +
		"used ahead of scene segmentation. Sizes come from the chunking section of " +
		"the configuration.",
	Example: `  # Preview sentence chunks
  narrator split novel.txt

  # Emit overlap chunks as JSON
  narrator split novel.txt --strategy overlap --json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateSplit,
	RunE:    runSplit,
}

func init() {
	SplitCmd.Flags().StringVarP(&splitStrategy, "strategy", "s", string(chunkers.StrategySentence),
		"Chunking strategy (sentence, overlap, recursive)")
	SplitCmd.Flags().BoolVar(&splitJSON, "json", false, "Output chunks as JSON")
	SplitCmd.Flags().BoolVar(&splitFull, "full", false, "Print full chunk contents instead of a preview")
}

func validateSplit(cmd *cobra.Command, args []string) error {
	if _, err := chunkers.ParseStrategy(splitStrategy); err != nil {
		return err
	}
	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("cannot read input; %w", err)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

type chunkJSON struct {
	Index         int    `json:"index"`
	StartOffset   int    `json:"start_offset"`
	EndOffset     int    `json:"end_offset"`
	TokenEstimate int    `json:"token_estimate"`
	Content       string `json:"content"`
}

func runSplit(cmd *cobra.Command, args []string) error {
	ctx, stop := cmdutil.SignalContext()
	defer stop()

	svc, err := cmdutil.NewService()
	if err != nil {
		return err
	}
	defer svc.Close()

	doc, err := svc.Extract(ctx, args[0])
	if err != nil {
		return err
	}

	strategy, _ := chunkers.ParseStrategy(splitStrategy)
	result, err := svc.Split(ctx, doc.Text, strategy)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if splitJSON {
		return writeJSON(out, result)
	}
	writeText(out, result, splitFull)
	return nil
}

func writeJSON(out io.Writer, result *chunkers.ChunkResult) error {
	list := make([]chunkJSON, len(result.Chunks))
	for i, c := range result.Chunks {
		list[i] = chunkJSON{
			Index:         c.Index,
			StartOffset:   c.StartOffset,
			EndOffset:     c.EndOffset,
			TokenEstimate: c.Metadata.TokenEstimate,
			Content:       c.Content,
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"strategy":          result.ChunkerUsed,
		"total_chunks":      result.TotalChunks,
		"normalized_length": result.NormalizedLength,
		"chunks":            list,
	})
}

func writeText(out io.Writer, result *chunkers.ChunkResult, full bool) {
	fmt.Fprintln(out, cmdutil.Title.Render(fmt.Sprintf("%d %s chunks", result.TotalChunks, result.ChunkerUsed)))
	fmt.Fprintln(out, cmdutil.Field("Document", fmt.Sprintf("%d characters", result.NormalizedLength)))
	fmt.Fprintln(out)

	for _, c := range result.Chunks {
		header := fmt.Sprintf("[%d] %d-%d (~%d tokens)", c.Index, c.StartOffset, c.EndOffset, c.Metadata.TokenEstimate)
		fmt.Fprintln(out, cmdutil.MutedText.Render(header))
		if full {
			fmt.Fprintln(out, c.Content)
			fmt.Fprintln(out)
			continue
		}
		fmt.Fprintf(out, "  %s\n", preview(c.Content))
	}
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= previewLength {
		return s
	}
	return string(runes[:previewLength-3]) + "..."
}

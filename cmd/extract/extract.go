// Package extract implements the extract command for reading a novel as plain text.
package extract

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/internal/cmdutil"
	"github.com/leefowlercu/novel-narrator/internal/fsutil"
)

// Flag variables for the extract command.
var (
	extractOutput string
)

// ExtractCmd prints the plain text of a novel.
var ExtractCmd = &cobra.Command{
	Use:   "extract <input>",
	Short: "Extract plain text from a novel",
	Long: "Extract plain text from a novel.\n\n" +
		"Reads a plain text, HTML, or EPUB file and writes its text with paragraphs " +
		"separated by blank lines. EPUB chapters are read in spine order.",
	Example: `  # Print the text of an EPUB
  narrator extract novel.epub

  # Save the text to a file
  narrator extract novel.epub --output novel.txt`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateExtract,
	RunE:    runExtract,
}

func init() {
	ExtractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Write the text to a file instead of stdout")
}

func validateExtract(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("cannot read input; %w", err)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
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

	if extractOutput != "" {
		if err := fsutil.WriteFileAtomic(extractOutput, []byte(doc.Text), 0644); err != nil {
			return fmt.Errorf("failed to write output; %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), cmdutil.Status(true, fmt.Sprintf("extracted %q to %s", doc.Title, extractOutput)))
		return nil
	}

	_, err = io.WriteString(cmd.OutOrStdout(), doc.Text+"\n")
	return err
}

// Package translate implements the translate command.
package translate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/novel-narrator/internal/cmdutil"
	"github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/pipeline"
	"github.com/leefowlercu/novel-narrator/internal/translate"
)

// Flag variables for the translate command.
var (
	translateOutput     string
	translateLanguage   string
	translateProvider   string
	translateStartIndex int
	translateQuiet      bool
)

// TranslateCmd translates a novel chunk by chunk.
var TranslateCmd = &cobra.Command{
	Use:   "translate <input>",
	Short: "Translate a novel into another language",
	Long: "Translate a novel into another language.\n\n" +
		"The text is split at sentence boundaries and each chunk is sent to the " +
		"configured translation provider in order. Translated chunks are written as " +
		"soon as they arrive, one per line. When a chunk fails, the configured fallback " +
		"either keeps the original text or stops the run; use --start-index to resume " +
		"an interrupted run by appending to the existing output.",
	Example: `  # Translate into the configured language
  narrator translate novel.txt --output translation.txt

  # Translate into English with Gemini
  narrator translate novel.epub -o english.txt --language English --provider google

  # Resume a stopped run at the index it reported
  narrator translate novel.txt -o translation.txt --start-index 42`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateTranslate,
	RunE:    runTranslate,
}

func init() {
	TranslateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "Output file (default stdout)")
	TranslateCmd.Flags().StringVarP(&translateLanguage, "language", "l", "", "Target language (overrides translate.target_language)")
	TranslateCmd.Flags().StringVarP(&translateProvider, "provider", "p", "", "Translation provider (overrides translate.provider)")
	TranslateCmd.Flags().IntVar(&translateStartIndex, "start-index", 0, "Skip chunks before this 0-based index and append to the output")
	TranslateCmd.Flags().BoolVarP(&translateQuiet, "quiet", "q", false, "Do not report progress")
}

func validateTranslate(cmd *cobra.Command, args []string) error {
	if translateStartIndex < 0 {
		return fmt.Errorf("--start-index must be non-negative")
	}
	if translateStartIndex > 0 && translateOutput == "" {
		return fmt.Errorf("--start-index requires --output")
	}
	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("cannot read input; %w", err)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx, stop := cmdutil.SignalContext()
	defer stop()

	if translateLanguage != "" {
		config.Set("translate.target_language", translateLanguage)
	}
	if translateProvider != "" {
		config.Set("translate.provider", translateProvider)
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

	out, closeOut, err := openOutput(cmd, translateOutput, translateStartIndex > 0)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	opts := pipeline.TranslateOptions{StartIndex: translateStartIndex}
	if !translateQuiet {
		stderr := cmd.ErrOrStderr()
		opts.Progress = func(p translate.Progress) {
			// Flush so an interrupted run leaves every reported chunk on disk.
			_ = w.Flush()
			note := ""
			switch {
			case p.Cached:
				note = " (cached)"
			case p.Fallback:
				note = " (kept original)"
			}
			fmt.Fprintf(stderr, "translated chunk %d/%d%s\n", p.Index+1, p.Total, note)
		}
	}

	report, err := svc.Translate(ctx, doc.Text, w, opts)
	if flushErr := w.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("failed to write translation; %w", flushErr)
	}
	if closeErr := closeOut(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close output; %w", closeErr)
	}
	if err != nil {
		if hint := resumeHint(report, translateOutput); hint != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), cmdutil.WarningText.Render(hint))
		}
		return err
	}

	if !translateQuiet {
		printReport(cmd.ErrOrStderr(), report)
	}
	return nil
}

func openOutput(cmd *cobra.Command, path string, appendMode bool) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open output; %w", err)
	}
	return f, f.Close, nil
}

// resumeHint tells the user which --start-index continues a stopped run.
func resumeHint(r *translate.Report, output string) string {
	if r == nil || output == "" || r.NextIndex >= r.TotalChunks {
		return ""
	}
	return fmt.Sprintf("%d of %d chunks written; resume with --start-index %d -o %s",
		r.NextIndex, r.TotalChunks, r.NextIndex, output)
}

func printReport(out io.Writer, r *translate.Report) {
	fmt.Fprintln(out, cmdutil.Status(r.Fallbacks == 0, "translation complete"))
	fmt.Fprintln(out, cmdutil.Field("Chunks", r.TotalChunks))
	fmt.Fprintln(out, cmdutil.Field("Translated", r.Translated))
	fmt.Fprintln(out, cmdutil.Field("Cached", r.Cached))
	if r.Fallbacks > 0 {
		fmt.Fprintln(out, cmdutil.WarningText.Render(cmdutil.Field("Kept original", fmt.Sprint(r.FallbackChunks))))
	}
	if r.Truncated > 0 {
		fmt.Fprintln(out, cmdutil.WarningText.Render(cmdutil.Field("Truncated", r.Truncated)))
	}
	fmt.Fprintln(out, cmdutil.Field("Duration", r.Duration.Round(time.Millisecond)))
}

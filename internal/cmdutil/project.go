package cmdutil

import (
	"fmt"
	"io"
	"time"

	"github.com/leefowlercu/novel-narrator/internal/config"
	"github.com/leefowlercu/novel-narrator/internal/media"
)

// ProjectLayout resolves dir, or the configured output_dir when dir is empty,
// and returns its layout with every subdirectory created.
func ProjectLayout(dir string) (media.Layout, error) {
	if dir == "" {
		dir = config.GetString("output_dir")
	}

	resolved, err := ResolvePath(dir)
	if err != nil {
		return media.Layout{}, fmt.Errorf("failed to resolve project directory; %w", err)
	}
	if resolved == "" {
		return media.Layout{}, fmt.Errorf("project directory is required")
	}

	layout := media.NewLayout(resolved)
	if err := layout.Ensure(); err != nil {
		return media.Layout{}, err
	}
	return layout, nil
}

// PrintStageReport writes a short summary of a media stage.
func PrintStageReport(w io.Writer, what, dir string, r *media.Report) {
	fmt.Fprintln(w, Status(len(r.Failed) == 0, fmt.Sprintf("%d/%d %s written to %s", r.Written, r.Total, what, dir)))
	if r.Skipped > 0 {
		fmt.Fprintln(w, MutedText.Render(Field("Kept", r.Skipped)))
	}
	if len(r.Failed) > 0 {
		fmt.Fprintln(w, ErrorText.Render(Field("Failed", fmt.Sprint(r.Failed))))
	}
	fmt.Fprintln(w, Field("Duration", r.Duration.Round(time.Millisecond)))
}

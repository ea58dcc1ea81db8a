package cmdutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leefowlercu/novel-narrator/internal/media"
)

func TestResolvePath(t *testing.T) {
	got, err := ResolvePath("")
	if err != nil || got != "" {
		t.Fatalf("ResolvePath(\"\") = %q, %v; want empty", got, err)
	}

	got, err = ResolvePath("a/../b")
	if err != nil {
		t.Fatalf("ResolvePath() error = %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "b" {
		t.Errorf("ResolvePath() = %q, want absolute path ending in b", got)
	}
}

func TestProjectLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")

	layout, err := ProjectLayout(dir)
	if err != nil {
		t.Fatalf("ProjectLayout() error = %v", err)
	}

	for _, sub := range []string{layout.ImagesDir(), layout.VoicesDir(), layout.VideosDir()} {
		info, err := os.Stat(sub)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", sub)
		}
	}
}

func TestPrintStageReport(t *testing.T) {
	tests := []struct {
		name     string
		report   media.Report
		contains []string
		excludes []string
	}{
		{
			name:     "all written",
			report:   media.Report{Total: 3, Written: 3, Duration: time.Second},
			contains: []string{"3/3 images written to /p/images", CheckMark},
			excludes: []string{"Failed", "Kept"},
		},
		{
			name:     "partial",
			report:   media.Report{Total: 3, Written: 1, Skipped: 1, Failed: []int{3}},
			contains: []string{"1/3 images", CrossMark, "Kept", "Failed", "[3]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintStageReport(&buf, "images", "/p/images", &tt.report)
			out := buf.String()

			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

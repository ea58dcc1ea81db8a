package run

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leefowlercu/novel-narrator/internal/fsutil"
	"github.com/leefowlercu/novel-narrator/internal/media"
	"github.com/leefowlercu/novel-narrator/internal/pipeline"
	"github.com/leefowlercu/novel-narrator/internal/scenes"
	"github.com/leefowlercu/novel-narrator/internal/testutil"
)

func TestRunCmd_WithoutAPIKeys(t *testing.T) {
	env := testutil.NewTestEnv(t)
	input := env.CreateTestFile("novel.txt", "The storm came. The lights went out.")

	stderr := new(bytes.Buffer)
	RunCmd.SetOut(new(bytes.Buffer))
	RunCmd.SetErr(stderr)
	RunCmd.SetArgs([]string{input, "--no-video"})
	t.Cleanup(func() {
		RunCmd.SetArgs(nil)
		runNoVideo, runDir = false, ""
	})

	err := RunCmd.Execute()
	if err == nil {
		t.Fatal("expected run to fail without provider credentials")
	}
	if !strings.Contains(err.Error(), "not configured") {
		t.Errorf("error = %v, want a missing configuration error", err)
	}

	// Extraction completes before the first provider is needed.
	layout := media.NewLayout(env.OutputDir)
	if !fsutil.Exists(layout.SourcePath()) {
		t.Errorf("expected %s to be written", layout.SourcePath())
	}
}

func TestPrintReport(t *testing.T) {
	report := &pipeline.RunReport{
		RunID:    "run-1",
		Document: &pipeline.Document{Path: "/books/novel.txt", Format: fsutil.FormatText},
		Segment: &scenes.Result{
			Scenes:        make([]scenes.Scene, 3),
			TotalChunks:   2,
			SkippedChunks: []int{1},
		},
		Images: &media.Report{Total: 3, Written: 2, Skipped: 1},
		Output: "/out/final_output.mp4",
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	for _, want := range []string{
		"Run run-1",
		"/books/novel.txt (text)",
		"3 from 2 chunks, 1 skipped",
		"2 written, 1 kept, 0 failed",
		"video written to /out/final_output.mp4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Narration") {
		t.Errorf("report should omit stages that did not run:\n%s", out)
	}
}

package scenes

import (
	"strings"
	"testing"
)

func TestPrompt(t *testing.T) {
	got, err := Prompt("  The ship sailed at dawn.  \n")
	if err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}

	for _, want := range []string{
		"You are a professional scriptwriter.",
		"**Always return a strict JSON format**",
		`"scenes":[`,
		`"scene_id": 1`,
		`"transition_reason": "The protagonist arrives at the location"`,
		"Here is the novel text:\nThe ship sailed at dawn.\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Examples are separated by a comma
	if !strings.Contains(got, "},{") && !strings.Contains(got, "}\n    ,{") {
		t.Errorf("examples should be comma separated:\n%s", got)
	}
}

func TestPromptBuilder_Custom(t *testing.T) {
	b, err := NewPromptBuilder(`chunk {{ add .ChunkIndex 1 }}: {{ .Text | upper }}`)
	if err != nil {
		t.Fatalf("NewPromptBuilder() error = %v", err)
	}

	got, err := b.Build("rain", 2)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got != "chunk 3: RAIN" {
		t.Errorf("Build() = %q, want %q", got, "chunk 3: RAIN")
	}
}

func TestPromptBuilder_Errors(t *testing.T) {
	if _, err := NewPromptBuilder("{{ .Text "); err == nil {
		t.Error("NewPromptBuilder() expected parse error")
	}

	b, err := NewPromptBuilder("{{ .Missing }}")
	if err != nil {
		t.Fatalf("NewPromptBuilder() error = %v", err)
	}
	if _, err := b.Build("x", 0); err == nil {
		t.Error("Build() expected error for missing key")
	}
}

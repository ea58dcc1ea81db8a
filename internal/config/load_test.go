package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFile_ReturnsDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := NewDefaultConfig()
	if cfg.Translate != want.Translate {
		t.Errorf("Translate = %+v, want %+v", cfg.Translate, want.Translate)
	}
	if cfg.Images.VisualStyle != want.Images.VisualStyle {
		t.Errorf("VisualStyle = %+v, want %+v", cfg.Images.VisualStyle, want.Images.VisualStyle)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
chunking:
  segment:
    strategy: recursive
    target_size: 1500
    overlap: 100
speech:
  provider: gtts
  language: fr
images:
  visual_style:
    mood: serene
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Chunking.Segment.Strategy != "recursive" || cfg.Chunking.Segment.TargetSize != 1500 {
		t.Errorf("Chunking.Segment = %+v", cfg.Chunking.Segment)
	}
	if cfg.Speech.Provider != "gtts" || cfg.Speech.Language != "fr" {
		t.Errorf("Speech = %+v", cfg.Speech)
	}
	if cfg.Images.VisualStyle.Mood != "serene" {
		t.Errorf("Mood = %q, want serene", cfg.Images.VisualStyle.Mood)
	}
	if cfg.Images.VisualStyle.Lighting != DefaultStyleLighting {
		t.Errorf("Lighting = %q, want default", cfg.Images.VisualStyle.Lighting)
	}
}

func TestLoadFromPath_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFromPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFromPath() expected error for missing file")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("translate:\n  fallback: retry\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	_, err := LoadFromPath(invalid)
	if !IsValidationError(err) {
		t.Errorf("LoadFromPath() error = %v, want validation error", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cfg := LoadWithDefaults()
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
	if cfg.Providers.OpenAI.APIKeyEnv != DefaultOpenAIAPIKeyEnv {
		t.Errorf("APIKeyEnv = %q", cfg.Providers.OpenAI.APIKeyEnv)
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("TEST_NARRATOR_KEY", "from-env")

	cfg := OpenAIConfig{APIKeyEnv: "TEST_NARRATOR_KEY"}
	if got := cfg.ResolveAPIKey(); got != "from-env" {
		t.Errorf("ResolveAPIKey() = %q, want from-env", got)
	}

	key := "inline"
	cfg.APIKey = &key
	if got := cfg.ResolveAPIKey(); got != "inline" {
		t.Errorf("ResolveAPIKey() = %q, want inline", got)
	}

	g := GoogleConfig{APIKeyEnv: "TEST_NARRATOR_KEY"}
	if got := g.ResolveAPIKey(); got != "from-env" {
		t.Errorf("Google ResolveAPIKey() = %q, want from-env", got)
	}
}

// Package testutil provides testing utilities for isolated test environments.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/novel-narrator/internal/config"
)

// TestEnv provides an isolated test environment with its own config directory.
type TestEnv struct {
	t         *testing.T
	ConfigDir string
	OutputDir string
	CacheDir  string
}

// NewTestEnv creates an isolated test environment.
// It uses environment variables to override all paths, ensuring complete
// isolation even when tests run in parallel across packages. Provider API keys
// are cleared so no test reaches a real service.
// Cleanup is automatic via t.Cleanup.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	root := t.TempDir()
	env := &TestEnv{
		t:         t,
		ConfigDir: filepath.Join(root, "config"),
		OutputDir: filepath.Join(root, "output"),
		CacheDir:  filepath.Join(root, "cache"),
	}

	if err := os.MkdirAll(env.ConfigDir, 0755); err != nil {
		t.Fatalf("failed to create test config dir: %v", err)
	}

	// These env vars override viper settings via AutomaticEnv()
	t.Setenv(config.EnvConfigDir, env.ConfigDir)
	t.Setenv("NARRATOR_LOG_FILE", filepath.Join(env.ConfigDir, "narrator.log"))
	t.Setenv("NARRATOR_OUTPUT_DIR", env.OutputDir)
	t.Setenv("NARRATOR_CACHE_DIR", env.CacheDir)
	t.Setenv(config.DefaultOpenAIAPIKeyEnv, "")
	t.Setenv(config.DefaultGoogleAPIKeyEnv, "")

	env.reload()
	t.Cleanup(config.Reset)

	return env
}

// WriteConfig writes content as the environment's config.yaml and reloads the
// configuration.
func (e *TestEnv) WriteConfig(content string) string {
	e.t.Helper()

	path := filepath.Join(e.ConfigDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		e.t.Fatalf("failed to write test config: %v", err)
	}
	e.reload()
	return path
}

func (e *TestEnv) reload() {
	e.t.Helper()

	config.Reset()
	if err := config.Init(""); err != nil {
		e.t.Fatalf("failed to initialize test config: %v", err)
	}
}

// CreateTestFile creates a file with the given content in a fresh temp directory.
// Returns the absolute path to the created file.
func (e *TestEnv) CreateTestFile(name, content string) string {
	e.t.Helper()

	filePath := filepath.Join(e.t.TempDir(), name)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to create test file %s: %v", filePath, err)
	}
	return filePath
}

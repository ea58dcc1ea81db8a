package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// configFilePath stores the path to the loaded config file
var configFilePath string

// Init initializes the configuration subsystem on the global viper instance.
// When explicitPath is set, only that file is read. Otherwise it searches for
// config.yaml in priority order:
//  1. Directory specified by NARRATOR_CONFIG_DIR environment variable
//  2. ~/.config/narrator/
//  3. Current working directory (.)
//
// If no config file is found, defaults are used.
// If a config file exists but is invalid or unreadable, Init returns an error.
func Init(explicitPath string) error {
	configure(viper.GetViper())

	if explicitPath != "" {
		viper.SetConfigFile(expandHome(explicitPath))
	} else {
		addSearchPaths(viper.GetViper())
	}

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			configFilePath = ""
			return nil
		}
		return fmt.Errorf("failed to read config; %w", err)
	}

	configFilePath = viper.ConfigFileUsed()
	slog.Debug("config initialized", "file", configFilePath)

	return nil
}

// Get returns the typed, validated configuration from the global viper instance.
func Get() (*Config, error) {
	return unmarshalConfig(viper.GetViper())
}

// ConfigFilePath returns the path to the loaded config file,
// or empty string if using defaults only.
func ConfigFilePath() string {
	return configFilePath
}

// Reset clears the configuration state for testing purposes.
func Reset() {
	viper.Reset()
	configFilePath = ""
}

// GetString returns the string value for the given key.
// Returns empty string if key is not found.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns the integer value for the given key.
// Returns 0 if key is not found or value cannot be converted to int.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns the boolean value for the given key.
// Returns false if key is not found or value cannot be converted to bool.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Set sets a value for the given key, overriding defaults and config file values.
// Used to apply command-line flags.
func Set(key string, value any) {
	viper.Set(key, value)
}

// GetPath returns the string value for the given key with ~ expanded to $HOME.
// Returns empty string if key is not found.
func GetPath(key string) string {
	return expandHome(viper.GetString(key))
}

// ExpandPath expands a leading ~ in path to the user's home directory.
func ExpandPath(path string) string {
	return expandHome(path)
}

// expandHome expands a leading ~ in path to the user's home directory.
// Only expands "~" alone or "~/..." patterns. Patterns like "~user" are not expanded.
// Returns the path unchanged if it doesn't start with ~/ or if home dir cannot be determined.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	// Only expand "~" or "~/..."
	if len(path) > 1 && path[1] != '/' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return home
	}

	return filepath.Join(home, path[2:])
}

// GetConfigPath returns the path where the config file should be located.
// If a config file is loaded, returns its path. Otherwise returns the default path.
func GetConfigPath() string {
	if configFilePath != "" {
		return configFilePath
	}
	return DefaultConfigPath()
}

// GetAllSettings returns all configuration settings as a map.
func GetAllSettings() map[string]any {
	return viper.AllSettings()
}

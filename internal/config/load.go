package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. NARRATOR_LOG_LEVEL.
const EnvPrefix = "NARRATOR"

// EnvConfigDir names the environment variable that overrides the config directory.
const EnvConfigDir = EnvPrefix + "_CONFIG_DIR"

// Load reads and returns the typed configuration from a fresh viper instance,
// searching the same locations as Init. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	configure(v)
	addSearchPaths(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config; %w", err)
		}
	}

	return unmarshalConfig(v)
}

// LoadFromPath reads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	configure(v)
	v.SetConfigFile(expandHome(path))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from %s; %w", path, err)
	}

	return unmarshalConfig(v)
}

// LoadWithDefaults returns configuration using defaults only.
// Use this in contexts where config file is not required (e.g., config init).
func LoadWithDefaults() *Config {
	cfg := NewDefaultConfig()
	return &cfg
}

// configure sets the file type, environment binding, and defaults.
func configure(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setViperDefaults(v)
}

// addSearchPaths adds the config directories in priority order.
func addSearchPaths(v *viper.Viper) {
	if envPath := os.Getenv(EnvConfigDir); envPath != "" {
		v.AddConfigPath(envPath)
	}

	if home := os.Getenv("HOME"); home != "" {
		v.AddConfigPath(filepath.Join(home, ".config", "narrator"))
	}

	v.AddConfigPath(".")
}

// unmarshalConfig converts viper config to typed Config struct.
func unmarshalConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config; %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

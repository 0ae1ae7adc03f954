package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// LocalConfigFile is the project-local configuration filename.
const LocalConfigFile = ".agentsync.toml"

// DefaultSourceURL is the canonical asset repository used when nothing
// overrides it.
const DefaultSourceURL = "https://github.com/agentsync/assets.git"

// EnvSource is the environment variable overriding the source URL.
const EnvSource = "AGENTSYNC_SOURCE"

// Config is the resolved configuration, constructed once at startup and
// passed down explicitly.
type Config struct {
	// Source is the asset source: a git URL or a local path.
	Source string `toml:"source" mapstructure:"source"`
	// Destination overrides the per-class default copy target.
	Destination string `toml:"destination,omitempty" mapstructure:"destination"`
	// Checkout is a local clone of the source repository that, when it
	// matches Source, is reused without any network call.
	Checkout string `toml:"checkout,omitempty" mapstructure:"checkout"`
}

// Load resolves configuration with Viper merge semantics. Precedence,
// highest first: CLI argument/flags > AGENTSYNC_SOURCE env var >
// .agentsync.toml in the working directory > built-in default.
// argSource and flagDest are the CLI values; empty means unset.
func Load(argSource, flagDest string) (*Config, error) {
	return load(argSource, flagDest, LocalConfigFile)
}

// load is the internal implementation that accepts an explicit config
// path, making it testable without touching the working directory.
func load(argSource, flagDest, localPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.SetDefault("source", DefaultSourceURL)
	if err := v.BindEnv("source", EnvSource); err != nil {
		return nil, fmt.Errorf("binding %s: %w", EnvSource, err)
	}

	if _, err := os.Stat(localPath); err == nil {
		v.SetConfigFile(localPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", localPath, err)
		}
	}

	// Highest priority: CLI values.
	if argSource != "" {
		v.Set("source", argSource)
	}
	if flagDest != "" {
		v.Set("destination", flagDest)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// WriteLocal persists cfg to .agentsync.toml in the given directory so
// later runs pick the same source without flags.
func WriteLocal(dir string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	path := filepath.Join(dir, LocalConfigFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

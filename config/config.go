// Package config provides configuration loading and management for oaepub.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// UserConfigDir is the directory for user-level config, relative to $HOME.
	UserConfigDir = ".config/oaepub"
	// UserConfigFile is the name of the user-level config file.
	UserConfigFile = "config.yaml"
)

// Config represents the complete oaepub configuration.
type Config struct {
	Output Output `yaml:"output"`
	Images Images `yaml:"images"`
	Log    Log    `yaml:"log"`
}

// Output configures where finished EPUB files are placed.
type Output struct {
	// Dir is the directory for produced EPUB files. An empty value means
	// the directory of the input article.
	Dir string `yaml:"dir"`
	// Epubcheck is the path to an epubcheck executable used by validation
	// (default: "epubcheck", resolved via PATH).
	Epubcheck string `yaml:"epubcheck"`
}

// Images configures how article images are located.
type Images struct {
	// Source is an explicit image directory. A "*" segment expands to the
	// base name of the input file.
	Source string `yaml:"source"`
	// InputRelative lists directories tried relative to the input article,
	// in order.
	InputRelative []string `yaml:"input_relative"`
	// CacheDir is the root of the local image cache.
	CacheDir string `yaml:"cache_dir"`
	// UseCache enables reading previously cached images.
	UseCache bool `yaml:"use_cache"`
	// StoreCache enables writing fetched images back to the cache.
	StoreCache bool `yaml:"store_cache"`
	// Fetch enables downloading images from the publisher.
	Fetch bool `yaml:"fetch"`
}

// Log configures logging output.
type Log struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	cacheDir := "image-cache"
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, UserConfigDir, "image-cache")
	}
	return &Config{
		Output: Output{
			Dir:       "",
			Epubcheck: "epubcheck",
		},
		Images: Images{
			Source:        "",
			InputRelative: []string{"images-*", "images"},
			CacheDir:      cacheDir,
			UseCache:      true,
			StoreCache:    true,
			Fetch:         true,
		},
		Log: Log{Level: "info"},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	if (c.Images.UseCache || c.Images.StoreCache) && c.Images.CacheDir == "" {
		return fmt.Errorf("config: image caching enabled but cache_dir is empty")
	}
	return nil
}

// LoadFile loads configuration from a YAML file, layered over defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Load resolves the active configuration. When path is non-empty that file
// is required; otherwise the user config file is used if present, and plain
// defaults if not.
func Load(path string) (*Config, error) {
	if path != "" {
		cfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}

	userPath := userConfigPath()
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := LoadFile(userPath)
		if err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}

	cfg := Default()
	return cfg, cfg.Validate()
}

// Save writes the configuration to a YAML file, creating parent directories
// as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// Package config handles reading and writing ~/.reposcribe/config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version    int              `yaml:"version" mapstructure:"version"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Generation GenerationConfig `yaml:"generation" mapstructure:"generation"`
	Download   DownloadConfig   `yaml:"download" mapstructure:"download"`
	State      StateConfig      `yaml:"state" mapstructure:"state"`
	Render     RenderConfig     `yaml:"render" mapstructure:"render"`
}

// ServerConfig points the client at a reposcribe API.
type ServerConfig struct {
	URL            string `yaml:"url" mapstructure:"url"`
	RequestTimeout int    `yaml:"request_timeout" mapstructure:"request_timeout"` // seconds, 0 = none
	UploadTimeout  int    `yaml:"upload_timeout" mapstructure:"upload_timeout"`   // seconds, 0 = none
}

// GenerationConfig controls the documentation poll loop.
type GenerationConfig struct {
	PollIntervalMs int `yaml:"poll_interval_ms" mapstructure:"poll_interval_ms"`
	TimeoutMs      int `yaml:"timeout_ms" mapstructure:"timeout_ms"`
}

// DownloadConfig controls where downloaded documentation lands.
type DownloadConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "markdown" | "html"
	Dir    string `yaml:"dir" mapstructure:"dir"`
}

// StateConfig locates the local state database and event log.
type StateConfig struct {
	Dir               string `yaml:"dir" mapstructure:"dir"`
	HistoryMaxAgeDays int    `yaml:"history_max_age_days" mapstructure:"history_max_age_days"`
}

// RenderConfig controls terminal markdown rendering.
type RenderConfig struct {
	Style string `yaml:"style" mapstructure:"style"` // "auto" | "dark" | "light" | "notty"
	Width int    `yaml:"width" mapstructure:"width"`
}

const (
	configDir  = ".reposcribe"
	configFile = "config.yaml"
	envPrefix  = "REPOSCRIBE"
)

// PollInterval returns the generation poll interval as a duration.
func (c GenerationConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Timeout returns the generation ceiling as a duration.
func (c GenerationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// DefaultDir returns ~/.reposcribe, falling back to ./.reposcribe when the
// home directory cannot be resolved.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return configDir
	}
	return filepath.Join(home, configDir)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), configFile)
}

// ReadConfig reads config.yaml from the given directory.
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// WriteConfig writes cfg to config.yaml in the given directory.
// Creates the directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (DefaultPath when empty, missing file is fine), then REPOSCRIBE_*
// environment variables such as REPOSCRIBE_SERVER_URL.
func Load(path string) (*Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, def)

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that are
// absent from the file.
func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("version", def.Version)
	v.SetDefault("server.url", def.Server.URL)
	v.SetDefault("server.request_timeout", def.Server.RequestTimeout)
	v.SetDefault("server.upload_timeout", def.Server.UploadTimeout)
	v.SetDefault("generation.poll_interval_ms", def.Generation.PollIntervalMs)
	v.SetDefault("generation.timeout_ms", def.Generation.TimeoutMs)
	v.SetDefault("download.format", def.Download.Format)
	v.SetDefault("download.dir", def.Download.Dir)
	v.SetDefault("state.dir", def.State.Dir)
	v.SetDefault("state.history_max_age_days", def.State.HistoryMaxAgeDays)
	v.SetDefault("render.style", def.Render.Style)
	v.SetDefault("render.width", def.Render.Width)
}

// Validate rejects settings the client cannot operate with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return fmt.Errorf("server.url is required")
	}
	if c.Generation.PollIntervalMs <= 0 {
		return fmt.Errorf("generation.poll_interval_ms must be positive, got %d", c.Generation.PollIntervalMs)
	}
	if c.Generation.TimeoutMs <= 0 {
		return fmt.Errorf("generation.timeout_ms must be positive, got %d", c.Generation.TimeoutMs)
	}
	switch c.Download.Format {
	case "markdown", "html":
	default:
		return fmt.Errorf("download.format must be markdown or html, got %q", c.Download.Format)
	}
	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			URL:            "http://localhost:8080/api",
			RequestTimeout: 30,
			UploadTimeout:  0,
		},
		Generation: GenerationConfig{
			PollIntervalMs: 2000,
			TimeoutMs:      300000,
		},
		Download: DownloadConfig{
			Format: "markdown",
			Dir:    ".",
		},
		State: StateConfig{
			Dir:               DefaultDir(),
			HistoryMaxAgeDays: 30,
		},
		Render: RenderConfig{
			Style: "auto",
			Width: 100,
		},
	}
}

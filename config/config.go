// Package config loads assistant settings from YAML or TOML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Provider    ProviderConfig `yaml:"provider" toml:"provider"`
	Anthropic   EndpointConfig `yaml:"anthropic" toml:"anthropic"`
	Store       StoreConfig    `yaml:"store" toml:"store"`
	Speech      SpeechConfig   `yaml:"speech" toml:"speech"`
	PersonasDir string         `yaml:"personas_dir" toml:"personas_dir"`
	Log         LogConfig      `yaml:"log" toml:"log"`
	Tracing     TracingConfig  `yaml:"tracing" toml:"tracing"`
	Limits      LimitsConfig   `yaml:"limits" toml:"limits"`
}

// ProviderConfig selects and tunes the chat completion endpoint. APIKey is
// only ever read from the environment.
type ProviderConfig struct {
	Name             string        `yaml:"name" toml:"name"` // deepseek, anthropic or lorem
	BaseURL          string        `yaml:"base_url" toml:"base_url"`
	Model            string        `yaml:"model" toml:"model"`
	Temperature      float64       `yaml:"temperature" toml:"temperature"`
	MaxTokens        int           `yaml:"max_tokens" toml:"max_tokens"`
	FirstByteTimeout time.Duration `yaml:"first_byte_timeout" toml:"first_byte_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	APIKey           string        `yaml:"-" toml:"-"`
}

// EndpointConfig holds the endpoint settings of the anthropic provider. The
// sampling and timeout settings of ProviderConfig apply to it as well.
type EndpointConfig struct {
	BaseURL string `yaml:"base_url" toml:"base_url"`
	Model   string `yaml:"model" toml:"model"`
	APIKey  string `yaml:"-" toml:"-"`
}

// StoreConfig selects where the conversation is persisted. An empty Path
// resolves to a file in the data directory.
type StoreConfig struct {
	Driver string `yaml:"driver" toml:"driver"` // json or sqlite
	Path   string `yaml:"path" toml:"path"`
}

// SpeechConfig configures speech synthesis, playback and voice input.
type SpeechConfig struct {
	Enabled         bool     `yaml:"enabled" toml:"enabled"`
	Voice           string   `yaml:"voice" toml:"voice"`
	Model           string   `yaml:"model" toml:"model"`
	TranscribeModel string   `yaml:"transcribe_model" toml:"transcribe_model"`
	SpeakingRate    float64  `yaml:"speaking_rate" toml:"speaking_rate"`
	Pitch           float64  `yaml:"pitch" toml:"pitch"`
	PlayerCommand   []string `yaml:"player_command" toml:"player_command"`
	RecorderCommand []string `yaml:"recorder_command" toml:"recorder_command"`
	APIKey          string   `yaml:"-" toml:"-"`
}

// LogConfig configures the slog handler. Output is stderr, stdout or a file
// path.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	Output string `yaml:"output" toml:"output"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Exporter string `yaml:"exporter" toml:"exporter"` // stdout or noop
}

// LimitsConfig bounds outbound request rate and configures the circuit
// breaker around the provider.
type LimitsConfig struct {
	RequestsPerMinute  int           `yaml:"requests_per_minute" toml:"requests_per_minute"`
	Burst              int           `yaml:"burst" toml:"burst"`
	BreakerMaxFailures uint32        `yaml:"breaker_max_failures" toml:"breaker_max_failures"`
	BreakerTimeout     time.Duration `yaml:"breaker_timeout" toml:"breaker_timeout"`
	BreakerInterval    time.Duration `yaml:"breaker_interval" toml:"breaker_interval"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:             "deepseek",
			BaseURL:          "https://api.deepseek.com",
			Model:            "deepseek-chat",
			Temperature:      0.7,
			MaxTokens:        1000,
			FirstByteTimeout: 30 * time.Second,
			IdleTimeout:      30 * time.Second,
		},
		Anthropic: EndpointConfig{
			BaseURL: "https://api.anthropic.com",
			Model:   "claude-sonnet-4-20250514",
		},
		Store: StoreConfig{Driver: "json"},
		Speech: SpeechConfig{
			Enabled:         true,
			Voice:           "Kore",
			Model:           "gemini-2.5-flash-preview-tts",
			TranscribeModel: "gemini-2.5-flash",
			SpeakingRate:    1.0,
			PlayerCommand:   []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-"},
			RecorderCommand: []string{"sox", "-q", "-d", "-t", "wav", "-", "silence", "1", "0.1", "1%", "1", "1.5", "1%"},
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Tracing: TracingConfig{
			Exporter: "noop",
		},
		Limits: LimitsConfig{
			RequestsPerMinute:  20,
			Burst:              1,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
			BreakerInterval:    60 * time.Second,
		},
	}
}

// Load reads the file at path over Defaults. The format follows the file
// extension. A missing file yields the defaults. Load neither applies the
// environment nor validates.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported file extension %q", ext)
	}
	return cfg, nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with values from the environment.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	if v := get("DEEPSEEK_API_KEY"); v != "" {
		c.Provider.APIKey = v
	} else if v := get("VITE_DEEPSEEK_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := get("ANTHROPIC_API_KEY"); v != "" {
		c.Anthropic.APIKey = v
	}
	if v := get("GEMINI_API_KEY"); v != "" {
		c.Speech.APIKey = v
	}
	if v := get("ASSISTANT_PROVIDER"); v != "" {
		c.Provider.Name = v
	}
	if v := get("ASSISTANT_MODEL"); v != "" {
		c.SetModel(v)
	}
	if v := get("ASSISTANT_BASE_URL"); v != "" {
		c.SetBaseURL(v)
	}
	if v := get("ASSISTANT_STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := get("ASSISTANT_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := get("ASSISTANT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := get("ASSISTANT_SPEECH_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Speech.Enabled = b
		}
	}
	if v := get("ASSISTANT_TRACING_EXPORTER"); v != "" {
		c.Tracing.Enabled = true
		c.Tracing.Exporter = v
	}
}

// Model returns the model of the selected provider.
func (c *Config) Model() string {
	if c.Provider.Name == "anthropic" {
		return c.Anthropic.Model
	}
	return c.Provider.Model
}

// SetModel sets the model of the selected provider.
func (c *Config) SetModel(model string) {
	if c.Provider.Name == "anthropic" {
		c.Anthropic.Model = model
		return
	}
	c.Provider.Model = model
}

// SetBaseURL sets the base URL of the selected provider.
func (c *Config) SetBaseURL(url string) {
	if c.Provider.Name == "anthropic" {
		c.Anthropic.BaseURL = url
		return
	}
	c.Provider.BaseURL = url
}

// DataDir returns the directory used for default store and log files.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".virtual-ai-assistant"
	}
	return filepath.Join(home, ".virtual-ai-assistant")
}

// StorePath returns the configured store path or the driver's default file
// in dataDir.
func (c *Config) StorePath(dataDir string) string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.Store.Driver == "sqlite" {
		return filepath.Join(dataDir, "conversation.db")
	}
	return filepath.Join(dataDir, "conversation.json")
}

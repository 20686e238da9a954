package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks c for structural correctness. It returns a
// *ValidationError listing every problem found.
func (c *Config) Validate() error {
	ve := &ValidationError{}
	c.validateProvider(ve)
	c.validateStore(ve)
	c.validateSpeech(ve)
	c.validateLog(ve)
	c.validateTracing(ve)
	c.validateLimits(ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func (c *Config) validateProvider(ve *ValidationError) {
	p := c.Provider
	switch p.Name {
	case "deepseek":
		validateURL(ve, "provider.base_url", p.BaseURL)
	case "anthropic":
		validateURL(ve, "anthropic.base_url", c.Anthropic.BaseURL)
		if c.Anthropic.Model == "" {
			ve.Add("anthropic.model is required")
		}
		if p.Temperature > 1 {
			ve.Add("provider.temperature must be within [0, 1] for anthropic")
		}
	case "lorem":
	default:
		ve.Add("provider.name must be deepseek, anthropic or lorem, got %q", p.Name)
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		ve.Add("provider.temperature must be within [0, 2]")
	}
	if p.MaxTokens <= 0 {
		ve.Add("provider.max_tokens must be > 0")
	}
	if p.FirstByteTimeout < 0 {
		ve.Add("provider.first_byte_timeout must be >= 0")
	}
	if p.IdleTimeout < 0 {
		ve.Add("provider.idle_timeout must be >= 0")
	}
}

func validateURL(ve *ValidationError, field, raw string) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		ve.Add("%s must be an absolute http(s) URL, got %q", field, raw)
	}
}

func (c *Config) validateStore(ve *ValidationError) {
	switch c.Store.Driver {
	case "json", "sqlite":
	default:
		ve.Add("store.driver must be json or sqlite, got %q", c.Store.Driver)
	}
}

func (c *Config) validateSpeech(ve *ValidationError) {
	s := c.Speech
	if s.Voice == "" {
		ve.Add("speech.voice is required")
	}
	if s.SpeakingRate <= 0 {
		ve.Add("speech.speaking_rate must be > 0")
	}
	if s.Pitch < -20 || s.Pitch > 20 {
		ve.Add("speech.pitch must be within [-20, 20]")
	}
	if len(s.PlayerCommand) == 0 {
		ve.Add("speech.player_command is required")
	}
	if len(s.RecorderCommand) == 0 {
		ve.Add("speech.recorder_command is required")
	}
}

func (c *Config) validateLog(ve *ValidationError) {
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		ve.Add("log.level %q is not recognised", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		ve.Add("log.format must be text or json, got %q", c.Log.Format)
	}
}

func (c *Config) validateTracing(ve *ValidationError) {
	switch c.Tracing.Exporter {
	case "", "noop", "stdout":
	default:
		ve.Add("tracing.exporter must be stdout or noop, got %q", c.Tracing.Exporter)
	}
}

func (c *Config) validateLimits(ve *ValidationError) {
	l := c.Limits
	if l.RequestsPerMinute < 0 {
		ve.Add("limits.requests_per_minute must be >= 0")
	}
	if l.RequestsPerMinute > 0 && l.Burst <= 0 {
		ve.Add("limits.burst must be > 0 when requests_per_minute is set")
	}
	if l.BreakerTimeout < 0 || l.BreakerInterval < 0 {
		ve.Add("limits breaker durations must be >= 0")
	}
}
